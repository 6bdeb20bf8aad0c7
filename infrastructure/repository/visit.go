package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vfg2006/cost-reconciler-api/infrastructure/database/postgres"
	"github.com/vfg2006/cost-reconciler-api/internal/domain"
)

const (
	visitsTable  = "visits v"
	visitColumns = "v.visit_id, v.visitor_id, v.site_id, v.first_action_time, v.referer_type, " +
		"v.campaign_name, v.campaign_keyword, v.platform, v.ad_params"
)

// VisitRepository lê as visitas registradas pelo tracker. A tabela de
// visitas é propriedade do subsistema de tracking; o motor de reconciliação
// nunca escreve nela.
type VisitRepository interface {
	ListByDate(date time.Time) ([]*domain.Visit, error)
}

type visitRepository struct {
	conn *postgres.Connection
}

func NewVisitRepository(conn *postgres.Connection) VisitRepository {
	return &visitRepository{
		conn: conn,
	}
}

func (r *visitRepository) ListByDate(date time.Time) ([]*domain.Visit, error) {
	query, args, err := squirrel.
		Select(visitColumns).
		From(visitsTable).
		Where(squirrel.Eq{"DATE(v.first_action_time)": date.Format(time.DateOnly)}).
		OrderBy("v.visit_id ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	visits := make([]*domain.Visit, 0)
	for rows.Next() {
		visit, err := r.scanVisit(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear visita: %w", err)
		}
		visits = append(visits, visit)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return visits, nil
}

func (r *visitRepository) scanVisit(rows *sql.Rows) (*domain.Visit, error) {
	visit := &domain.Visit{}
	var campaignName, campaignKeyword, platform sql.NullString
	var adParamsJSON []byte

	err := rows.Scan(
		&visit.VisitID,
		&visit.VisitorID,
		&visit.SiteID,
		&visit.FirstActionTime,
		&visit.RefererType,
		&campaignName,
		&campaignKeyword,
		&platform,
		&adParamsJSON,
	)
	if err != nil {
		return nil, err
	}

	visit.CampaignName = campaignName.String
	visit.CampaignKeyword = campaignKeyword.String
	visit.Platform = domain.Platform(platform.String)

	if adParamsJSON != nil {
		adParams := &domain.AdParams{}
		if err := json.Unmarshal(adParamsJSON, adParams); err != nil {
			return nil, fmt.Errorf("erro ao deserializar JSON de ad_params: %w", err)
		}
		visit.AdParams = adParams
	}

	return visit, nil
}
