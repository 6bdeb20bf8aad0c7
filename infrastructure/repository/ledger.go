package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/vfg2006/cost-reconciler-api/infrastructure/database/postgres"
	"github.com/vfg2006/cost-reconciler-api/internal/domain"
)

const (
	ledgerTable   = "aom_visits"
	ledgerColumns = "id, site_id, visit_id, visitor_id, unique_hash, first_action_time, " +
		"date_website_timezone, channel, campaign_data, platform_data, platform_key, " +
		"cost, conversions, revenue, created_at, updated_at"
)

// LedgerRepository é o único dono da tabela aom_visits. As operações com
// *sql.Tx compõem a fase WRITING da reconciliação de um dia, que precisa
// ser tudo-ou-nada: ou o ledger recalculado do dia substitui o anterior, ou
// o anterior permanece intocado.
type LedgerRepository interface {
	GetByVisitID(visitID int64) (*domain.LedgerEntry, error)
	ListBySiteDateChannel(siteID string, date time.Time, channel string) ([]*domain.LedgerEntry, error)

	// DeleteTrackedEntriesByDate remove as entradas com visita real do dia.
	// Entradas artificiais (visit_id NULL) sobrevivem entre execuções; o
	// custo delas é atualizado via upsert por unique_hash.
	DeleteTrackedEntriesByDate(tx *sql.Tx, date time.Time) (int64, error)
	BulkInsert(tx *sql.Tx, entries []*domain.LedgerEntry) error
	ListArtificialCostsByHash(tx *sql.Tx, hashes []string) (map[string]float64, error)
	InsertArtificialIgnoreConflicts(tx *sql.Tx, entries []*domain.LedgerEntry) (int64, error)
	UpdateArtificialCost(tx *sql.Tx, uniqueHash string, cost float64) error
}

type ledgerRepository struct {
	conn *postgres.Connection
}

func NewLedgerRepository(conn *postgres.Connection) LedgerRepository {
	return &ledgerRepository{
		conn: conn,
	}
}

func (r *ledgerRepository) GetByVisitID(visitID int64) (*domain.LedgerEntry, error) {
	query, args, err := squirrel.
		Select(ledgerColumns).
		From(ledgerTable).
		Where(squirrel.Eq{"visit_id": visitID}).
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

	entry, err := r.scanLedgerEntry(rows)
	if err != nil {
		return nil, fmt.Errorf("erro ao escanear entrada do ledger: %w", err)
	}

	return entry, nil
}

func (r *ledgerRepository) ListBySiteDateChannel(siteID string, date time.Time, channel string) ([]*domain.LedgerEntry, error) {
	query, args, err := listLedgerEntriesQuery(siteID, date, channel)
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	entries := make([]*domain.LedgerEntry, 0)
	for rows.Next() {
		entry, err := r.scanLedgerEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear entrada do ledger: %w", err)
		}
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return entries, nil
}

// listLedgerEntriesQuery monta a consulta de entradas por site e dia. O
// canal é um filtro opcional: vazio lista todos os canais do dia.
func listLedgerEntriesQuery(siteID string, date time.Time, channel string) (string, []interface{}, error) {
	where := squirrel.Eq{
		"site_id":               siteID,
		"date_website_timezone": date.Format(time.DateOnly),
	}
	if channel != "" {
		where["channel"] = channel
	}

	return squirrel.
		Select(ledgerColumns).
		From(ledgerTable).
		Where(where).
		OrderBy("id ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
}

func (r *ledgerRepository) DeleteTrackedEntriesByDate(tx *sql.Tx, date time.Time) (int64, error) {
	query, args, err := squirrel.
		Delete(ledgerTable).
		Where(squirrel.Eq{"date_website_timezone": date.Format(time.DateOnly)}).
		Where("visit_id IS NOT NULL").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("erro ao construir a query: %w", err)
	}

	result, err := tx.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("erro ao apagar entradas do dia: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("erro ao obter número de linhas afetadas: %w", err)
	}

	return rowsAffected, nil
}

// BulkInsert insere todas as entradas em um único statement, por
// performance: um dia pode conter milhares de visitas.
func (r *ledgerRepository) BulkInsert(tx *sql.Tx, entries []*domain.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}

	builder := squirrel.StatementBuilder.
		Insert(ledgerTable).
		Columns("site_id", "visit_id", "visitor_id", "unique_hash", "first_action_time",
			"date_website_timezone", "channel", "campaign_data", "platform_data",
			"platform_key", "cost", "conversions", "revenue").
		PlaceholderFormat(squirrel.Dollar)

	for _, entry := range entries {
		campaignJSON, platformJSON, err := marshalLedgerPayloads(entry)
		if err != nil {
			return err
		}

		builder = builder.Values(
			entry.SiteID,
			entry.VisitIDOrNil(),
			nullableString(entry.VisitorID),
			entry.UniqueHash,
			entry.FirstActionTime,
			entry.DateWebsiteTimezone,
			entry.Channel,
			campaignJSON,
			platformJSON,
			nullableString(entry.PlatformKey),
			entry.Cost,
			entry.Conversions,
			entry.Revenue,
		)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	if _, err := tx.Exec(query, args...); err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return fmt.Errorf("erro no banco de dados: %w (código: %s)", pqErr, pqErr.Code)
		}
		return fmt.Errorf("erro ao executar a query: %w", err)
	}

	return nil
}

// ListArtificialCostsByHash retorna, para os hashes informados, o custo
// atual das entradas artificiais já existentes no ledger.
func (r *ledgerRepository) ListArtificialCostsByHash(tx *sql.Tx, hashes []string) (map[string]float64, error) {
	costs := make(map[string]float64)
	if len(hashes) == 0 {
		return costs, nil
	}

	query, args, err := squirrel.
		Select("unique_hash, COALESCE(cost, 0)").
		From(ledgerTable).
		Where(squirrel.Eq{"unique_hash": hashes}).
		Where("visit_id IS NULL").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := tx.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var hash string
		var cost float64
		if err := rows.Scan(&hash, &cost); err != nil {
			return nil, fmt.Errorf("erro ao escanear hash artificial: %w", err)
		}
		costs[hash] = cost
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return costs, nil
}

// InsertArtificialIgnoreConflicts insere entradas artificiais tolerando
// corridas benignas entre execuções paralelas: conflitos no unique_hash são
// ignorados e o chamador compara o total inserido com o tentado.
func (r *ledgerRepository) InsertArtificialIgnoreConflicts(tx *sql.Tx, entries []*domain.LedgerEntry) (int64, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	builder := squirrel.StatementBuilder.
		Insert(ledgerTable).
		Columns("site_id", "visit_id", "visitor_id", "unique_hash", "first_action_time",
			"date_website_timezone", "channel", "campaign_data", "platform_data",
			"platform_key", "cost", "conversions", "revenue").
		Suffix("ON CONFLICT (unique_hash) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar)

	for _, entry := range entries {
		campaignJSON, platformJSON, err := marshalLedgerPayloads(entry)
		if err != nil {
			return 0, err
		}

		builder = builder.Values(
			entry.SiteID,
			nil,
			nullableString(entry.VisitorID),
			entry.UniqueHash,
			entry.FirstActionTime,
			entry.DateWebsiteTimezone,
			entry.Channel,
			campaignJSON,
			platformJSON,
			nullableString(entry.PlatformKey),
			entry.Cost,
			entry.Conversions,
			entry.Revenue,
		)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("erro ao construir a query: %w", err)
	}

	result, err := tx.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("erro ao executar a query: %w", err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("erro ao obter número de linhas afetadas: %w", err)
	}

	return inserted, nil
}

func (r *ledgerRepository) UpdateArtificialCost(tx *sql.Tx, uniqueHash string, cost float64) error {
	query, args, err := squirrel.
		Update(ledgerTable).
		Set("cost", cost).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"unique_hash": uniqueHash}).
		Where("visit_id IS NULL").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return fmt.Errorf("erro ao atualizar custo artificial: %w", err)
	}

	return nil
}

func (r *ledgerRepository) scanLedgerEntry(rows *sql.Rows) (*domain.LedgerEntry, error) {
	entry := &domain.LedgerEntry{}
	var visitID sql.NullInt64
	var visitorID, platformKey sql.NullString
	var cost sql.NullFloat64
	var dateWebsiteTimezone time.Time
	var campaignJSON, platformJSON []byte

	err := rows.Scan(
		&entry.ID,
		&entry.SiteID,
		&visitID,
		&visitorID,
		&entry.UniqueHash,
		&entry.FirstActionTime,
		&dateWebsiteTimezone,
		&entry.Channel,
		&campaignJSON,
		&platformJSON,
		&platformKey,
		&cost,
		&entry.Conversions,
		&entry.Revenue,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if visitID.Valid {
		entry.Origin = domain.RealVisit(visitID.Int64)
	} else {
		entry.Origin = domain.ArtificialVisit()
	}

	entry.VisitorID = visitorID.String
	entry.PlatformKey = platformKey.String
	entry.DateWebsiteTimezone = dateWebsiteTimezone.Format(time.DateOnly)

	if cost.Valid {
		entry.Cost = &cost.Float64
	}

	if campaignJSON != nil {
		campaignData := &domain.CampaignData{}
		if err := json.Unmarshal(campaignJSON, campaignData); err != nil {
			return nil, fmt.Errorf("erro ao deserializar JSON de campaign_data: %w", err)
		}
		entry.CampaignData = campaignData
	}

	if platformJSON != nil {
		entry.PlatformData = json.RawMessage(platformJSON)
	}

	return entry, nil
}

func marshalLedgerPayloads(entry *domain.LedgerEntry) ([]byte, []byte, error) {
	var campaignJSON []byte
	var err error

	if entry.CampaignData != nil {
		campaignJSON, err = json.Marshal(entry.CampaignData)
		if err != nil {
			return nil, nil, fmt.Errorf("erro ao serializar campaign_data para JSON: %w", err)
		}
	}

	var platformJSON []byte
	if entry.PlatformData != nil {
		platformJSON = entry.PlatformData
	}

	return campaignJSON, platformJSON, nil
}

func nullableString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
