package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vfg2006/cost-reconciler-api/infrastructure/database/postgres"
	"github.com/vfg2006/cost-reconciler-api/internal/domain"
)

const costRecordColumns = "id, site_id, date, campaign_id, campaign_name, ad_group_id, ad_group_name, " +
	"keyword_id, keyword_name, placement, network, adset_id, ad_id, publisher_site_id, " +
	"currency, impressions, clicks, cost, conversions, created_at"

// CostRecordTable retorna o nome da tabela de registros de custo da
// plataforma. Cada plataforma possui sua própria tabela (o esquema das
// colunas de dimensão varia por plataforma, mas o superconjunto é comum).
func CostRecordTable(platform domain.Platform) string {
	return "cost_records_" + string(platform)
}

// CostDimensionFilter seleciona registros de custo por uma projeção mais
// grosseira das dimensões, ignorando a data. Campos vazios não filtram.
// Usado pelo fallback descritivo do enriquecimento histórico.
type CostDimensionFilter struct {
	SiteID          string
	CampaignID      string
	AdGroupID       string
	AdsetID         string
	AdID            string
	PublisherSiteID string
}

type CostRecordRepository interface {
	ListByDate(platform domain.Platform, date time.Time) ([]*domain.CostRecord, error)
	FindLatestByDimensions(platform domain.Platform, filter CostDimensionFilter) (*domain.CostRecord, error)
	ReplaceDay(ctx context.Context, platform domain.Platform, siteID string, date time.Time, records []*domain.CostRecord) error
}

type costRecordRepository struct {
	conn *postgres.Connection
}

func NewCostRecordRepository(conn *postgres.Connection) CostRecordRepository {
	return &costRecordRepository{
		conn: conn,
	}
}

func (r *costRecordRepository) ListByDate(platform domain.Platform, date time.Time) ([]*domain.CostRecord, error) {
	query, args, err := squirrel.
		Select(costRecordColumns).
		From(CostRecordTable(platform)).
		Where(squirrel.Eq{"date": date.Format(time.DateOnly)}).
		OrderBy("id ASC").
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

	records := make([]*domain.CostRecord, 0)
	for rows.Next() {
		record, err := r.scanCostRecord(rows, platform)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear registro de custo: %w", err)
		}
		records = append(records, record)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return records, nil
}

// FindLatestByDimensions busca o registro de custo mais recente que
// compartilha a projeção grosseira informada, em qualquer data. Retorna nil
// quando nenhum registro corresponde.
func (r *costRecordRepository) FindLatestByDimensions(platform domain.Platform, filter CostDimensionFilter) (*domain.CostRecord, error) {
	where := squirrel.Eq{}
	if filter.SiteID != "" {
		where["site_id"] = filter.SiteID
	}
	if filter.CampaignID != "" {
		where["campaign_id"] = filter.CampaignID
	}
	if filter.AdGroupID != "" {
		where["ad_group_id"] = filter.AdGroupID
	}
	if filter.AdsetID != "" {
		where["adset_id"] = filter.AdsetID
	}
	if filter.AdID != "" {
		where["ad_id"] = filter.AdID
	}
	if filter.PublisherSiteID != "" {
		where["publisher_site_id"] = filter.PublisherSiteID
	}

	if len(where) == 0 {
		return nil, fmt.Errorf("filtro de dimensões vazio para a plataforma %s", platform)
	}

	query, args, err := squirrel.
		Select(costRecordColumns).
		From(CostRecordTable(platform)).
		Where(where).
		OrderBy("date DESC, id DESC").
		Limit(1).
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

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
		}
		return nil, nil
	}

	record, err := r.scanCostRecord(rows, platform)
	if err != nil {
		return nil, fmt.Errorf("erro ao escanear registro de custo: %w", err)
	}

	return record, nil
}

// ReplaceDay apaga e regrava todas as linhas de um (site, dia) da
// plataforma em uma única transação. É o caminho de escrita usado pelos
// jobs de importação; reimportar um dia substitui o dia inteiro.
func (r *costRecordRepository) ReplaceDay(ctx context.Context, platform domain.Platform, siteID string, date time.Time, records []*domain.CostRecord) error {
	return r.conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		deleteQuery, deleteArgs, err := squirrel.
			Delete(CostRecordTable(platform)).
			Where(squirrel.Eq{"site_id": siteID, "date": date.Format(time.DateOnly)}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("erro ao construir a query de delete: %w", err)
		}

		if _, err := tx.Exec(deleteQuery, deleteArgs...); err != nil {
			return fmt.Errorf("erro ao apagar registros do dia: %w", err)
		}

		if len(records) == 0 {
			return nil
		}

		builder := squirrel.StatementBuilder.
			Insert(CostRecordTable(platform)).
			Columns("site_id", "date", "campaign_id", "campaign_name", "ad_group_id", "ad_group_name",
				"keyword_id", "keyword_name", "placement", "network", "adset_id", "ad_id",
				"publisher_site_id", "currency", "impressions", "clicks", "cost", "conversions").
			PlaceholderFormat(squirrel.Dollar)

		for _, record := range records {
			builder = builder.Values(
				siteID,
				date.Format(time.DateOnly),
				record.CampaignID,
				record.CampaignName,
				record.AdGroupID,
				record.AdGroupName,
				record.KeywordID,
				record.KeywordName,
				record.Placement,
				record.Network,
				record.AdsetID,
				record.AdID,
				record.PublisherSiteID,
				record.Currency,
				record.Impressions,
				record.Clicks,
				record.Cost,
				record.Conversions,
			)
		}

		insertQuery, insertArgs, err := builder.ToSql()
		if err != nil {
			return fmt.Errorf("erro ao construir a query de insert: %w", err)
		}

		if _, err := tx.Exec(insertQuery, insertArgs...); err != nil {
			return fmt.Errorf("erro ao inserir registros do dia: %w", err)
		}

		return nil
	})
}

func (r *costRecordRepository) scanCostRecord(rows *sql.Rows, platform domain.Platform) (*domain.CostRecord, error) {
	record := &domain.CostRecord{Platform: platform}

	err := rows.Scan(
		&record.ID,
		&record.SiteID,
		&record.Date,
		&record.CampaignID,
		&record.CampaignName,
		&record.AdGroupID,
		&record.AdGroupName,
		&record.KeywordID,
		&record.KeywordName,
		&record.Placement,
		&record.Network,
		&record.AdsetID,
		&record.AdID,
		&record.PublisherSiteID,
		&record.Currency,
		&record.Impressions,
		&record.Clicks,
		&record.Cost,
		&record.Conversions,
		&record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return record, nil
}
