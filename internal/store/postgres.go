package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/solvx/solvency-engine/internal/asset"
	"github.com/solvx/solvency-engine/internal/model"
)

// PostgresStore implements Store using PostgreSQL as the source of truth.
// All monetary values are stored as NUMERIC for exact decimal precision;
// IORP holdings are stored as JSONB documents.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) SaveSME(ctx context.Context, sme *model.SME) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO smes (id, name, credit_rating, credit_score, industry,
		                   assets, liabilities,
		                   revenue, expenses, net_income,
		                   bs_assets, bs_liabilities, equity, created_at)
		 VALUES ($1, $2, $3, $4, $5,
		         $6::NUMERIC, $7::NUMERIC,
		         $8::NUMERIC, $9::NUMERIC, $10::NUMERIC,
		         $11::NUMERIC, $12::NUMERIC, $13::NUMERIC, $14)`,
		sme.ID, sme.Name, sme.CreditRating, sme.CreditScore, sme.Industry,
		sme.Assets.String(), sme.Liabilities.String(),
		sme.Statements.Income.Revenue.String(), sme.Statements.Income.Expenses.String(),
		sme.Statements.Income.NetIncome.String(),
		sme.Statements.Balance.Assets.String(), sme.Statements.Balance.Liabilities.String(),
		sme.Statements.Balance.Equity.String(),
		sme.CreatedAt,
	)
	return err
}

func (s *PostgresStore) GetSME(ctx context.Context, id string) (*model.SME, error) {
	var sme model.SME
	var assets, liabilities, revenue, expenses, netIncome, bsAssets, bsLiabilities, equity string

	err := s.pool.QueryRow(ctx,
		`SELECT id, name, credit_rating, credit_score, industry,
		        assets::TEXT, liabilities::TEXT,
		        revenue::TEXT, expenses::TEXT, net_income::TEXT,
		        bs_assets::TEXT, bs_liabilities::TEXT, equity::TEXT,
		        created_at
		 FROM smes WHERE id = $1`, id).
		Scan(&sme.ID, &sme.Name, &sme.CreditRating, &sme.CreditScore, &sme.Industry,
			&assets, &liabilities,
			&revenue, &expenses, &netIncome,
			&bsAssets, &bsLiabilities, &equity,
			&sme.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get sme %s: %w", id, err)
	}

	sme.Assets, _ = decimal.NewFromString(assets)
	sme.Liabilities, _ = decimal.NewFromString(liabilities)
	sme.Statements.Income.Revenue, _ = decimal.NewFromString(revenue)
	sme.Statements.Income.Expenses, _ = decimal.NewFromString(expenses)
	sme.Statements.Income.NetIncome, _ = decimal.NewFromString(netIncome)
	sme.Statements.Balance.Assets, _ = decimal.NewFromString(bsAssets)
	sme.Statements.Balance.Liabilities, _ = decimal.NewFromString(bsLiabilities)
	sme.Statements.Balance.Equity, _ = decimal.NewFromString(equity)

	return &sme, nil
}

func (s *PostgresStore) ListSMEs(ctx context.Context) ([]model.SME, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, credit_rating, credit_score, industry,
		        assets::TEXT, liabilities::TEXT,
		        revenue::TEXT, expenses::TEXT, net_income::TEXT,
		        bs_assets::TEXT, bs_liabilities::TEXT, equity::TEXT,
		        created_at
		 FROM smes ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var smes []model.SME
	for rows.Next() {
		var sme model.SME
		var assets, liabilities, revenue, expenses, netIncome, bsAssets, bsLiabilities, equity string
		if err := rows.Scan(&sme.ID, &sme.Name, &sme.CreditRating, &sme.CreditScore, &sme.Industry,
			&assets, &liabilities,
			&revenue, &expenses, &netIncome,
			&bsAssets, &bsLiabilities, &equity,
			&sme.CreatedAt); err != nil {
			return nil, err
		}
		sme.Assets, _ = decimal.NewFromString(assets)
		sme.Liabilities, _ = decimal.NewFromString(liabilities)
		sme.Statements.Income.Revenue, _ = decimal.NewFromString(revenue)
		sme.Statements.Income.Expenses, _ = decimal.NewFromString(expenses)
		sme.Statements.Income.NetIncome, _ = decimal.NewFromString(netIncome)
		sme.Statements.Balance.Assets, _ = decimal.NewFromString(bsAssets)
		sme.Statements.Balance.Liabilities, _ = decimal.NewFromString(bsLiabilities)
		sme.Statements.Balance.Equity, _ = decimal.NewFromString(equity)
		smes = append(smes, sme)
	}
	return smes, rows.Err()
}

func (s *PostgresStore) SaveIORP(ctx context.Context, iorp *model.IORP) error {
	holdings, err := json.Marshal(iorp.Assets)
	if err != nil {
		return fmt.Errorf("marshal iorp assets: %w", err)
	}
	positions, err := json.Marshal(iorp.Positions)
	if err != nil {
		return fmt.Errorf("marshal iorp positions: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO iorps (id, name, assets, positions,
		                    solvency_ratio, asset_diversification, industry_risk,
		                    total_assets, total_liabilities, num_employees,
		                    location, sector, hedge_ratio,
		                    reinsurance_amount, terms_updated, created_at)
		 VALUES ($1, $2, $3::JSONB, $4::JSONB,
		         $5::NUMERIC, $6::NUMERIC, $7::NUMERIC,
		         $8::NUMERIC, $9::NUMERIC, $10,
		         $11, $12, $13::NUMERIC,
		         $14::NUMERIC, $15, $16)`,
		iorp.ID, iorp.Name, holdings, positions,
		iorp.SolvencyRatio.String(), iorp.AssetDiversification.String(), iorp.IndustryRisk.String(),
		iorp.TotalAssets.String(), iorp.TotalLiabilities.String(), iorp.NumEmployees,
		iorp.Location, iorp.Sector, iorp.HedgeRatio.String(),
		iorp.ReinsuranceAmount.String(), iorp.TermsUpdated, iorp.CreatedAt,
	)
	return err
}

func (s *PostgresStore) GetIORP(ctx context.Context, id string) (*model.IORP, error) {
	var iorp model.IORP
	var holdings, positions []byte
	var solvencyRatio, diversification, industryRisk string
	var totalAssets, totalLiabilities, hedgeRatio, reinsuranceAmount string

	err := s.pool.QueryRow(ctx,
		`SELECT id, name, assets, positions,
		        solvency_ratio::TEXT, asset_diversification::TEXT, industry_risk::TEXT,
		        total_assets::TEXT, total_liabilities::TEXT, num_employees,
		        location, sector, hedge_ratio::TEXT,
		        reinsurance_amount::TEXT, terms_updated, created_at
		 FROM iorps WHERE id = $1`, id).
		Scan(&iorp.ID, &iorp.Name, &holdings, &positions,
			&solvencyRatio, &diversification, &industryRisk,
			&totalAssets, &totalLiabilities, &iorp.NumEmployees,
			&iorp.Location, &iorp.Sector, &hedgeRatio,
			&reinsuranceAmount, &iorp.TermsUpdated, &iorp.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get iorp %s: %w", id, err)
	}

	if err := json.Unmarshal(holdings, &iorp.Assets); err != nil {
		return nil, fmt.Errorf("unmarshal iorp assets: %w", err)
	}
	if err := json.Unmarshal(positions, &iorp.Positions); err != nil {
		return nil, fmt.Errorf("unmarshal iorp positions: %w", err)
	}

	iorp.SolvencyRatio, _ = decimal.NewFromString(solvencyRatio)
	iorp.AssetDiversification, _ = decimal.NewFromString(diversification)
	iorp.IndustryRisk, _ = decimal.NewFromString(industryRisk)
	iorp.TotalAssets, _ = decimal.NewFromString(totalAssets)
	iorp.TotalLiabilities, _ = decimal.NewFromString(totalLiabilities)
	iorp.HedgeRatio, _ = decimal.NewFromString(hedgeRatio)
	iorp.ReinsuranceAmount, _ = decimal.NewFromString(reinsuranceAmount)

	// Guard against NULL JSONB round-tripping to the string "null".
	if iorp.Assets == nil {
		iorp.Assets = []asset.Asset{}
	}
	if iorp.Positions == nil {
		iorp.Positions = []asset.Position{}
	}

	return &iorp, nil
}

func (s *PostgresStore) UpdateIORPReinsurance(ctx context.Context, id string, amount decimal.Decimal) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE iorps
		 SET reinsurance_amount = $2::NUMERIC, terms_updated = TRUE
		 WHERE id = $1`,
		id, amount.String(),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("iorp %s not found", id)
	}
	return nil
}

func (s *PostgresStore) InsertQuote(ctx context.Context, q *model.QuoteRecord) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO quotes (id, entity_id, kind, sector, risk_profile, coverage, amount, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6::NUMERIC, $7::NUMERIC, $8)`,
		q.ID, q.EntityID, q.Kind, q.Sector, string(q.RiskProfile),
		q.Coverage.String(), q.Amount.String(), q.CreatedAt,
	)
	return err
}

func (s *PostgresStore) QuotesByEntity(ctx context.Context, entityID string) ([]model.QuoteRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, entity_id, kind, sector, risk_profile,
		        coverage::TEXT, amount::TEXT, created_at
		 FROM quotes WHERE entity_id = $1 ORDER BY created_at`, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quotes []model.QuoteRecord
	for rows.Next() {
		var q model.QuoteRecord
		var profile, coverageS, amountS string

		if err := rows.Scan(&q.ID, &q.EntityID, &q.Kind, &q.Sector, &profile,
			&coverageS, &amountS, &q.CreatedAt); err != nil {
			return nil, err
		}

		q.RiskProfile = model.RiskProfile(profile)
		q.Coverage, _ = decimal.NewFromString(coverageS)
		q.Amount, _ = decimal.NewFromString(amountS)

		quotes = append(quotes, q)
	}
	return quotes, rows.Err()
}

func (s *PostgresStore) ReinsuranceExposure(ctx context.Context, entityID string) (decimal.Decimal, error) {
	var totalS string
	err := s.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0)::TEXT
		 FROM quotes WHERE entity_id = $1 AND kind = $2`,
		entityID, model.QuoteKindReinsurance).Scan(&totalS)
	if err != nil {
		return decimal.Zero, err
	}

	total, _ := decimal.NewFromString(totalS)
	return total, nil
}

func (s *PostgresStore) SectorExposures(ctx context.Context) (map[string]decimal.Decimal, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT sector, COALESCE(SUM(amount), 0)::TEXT
		 FROM quotes
		 WHERE kind = $1 AND sector <> ''
		 GROUP BY sector`, model.QuoteKindReinsurance)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	exposures := make(map[string]decimal.Decimal)
	for rows.Next() {
		var sector, totalS string
		if err := rows.Scan(&sector, &totalS); err != nil {
			return nil, err
		}
		total, _ := decimal.NewFromString(totalS)
		exposures[sector] = total
	}

	return exposures, rows.Err()
}
