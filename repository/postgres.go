package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/zynexa/go-zynexa-server/global"
	"github.com/zynexa/go-zynexa-server/types"
)

type PostgresStore struct {
	db *bun.DB
}

// NewPostgresStore opens a connection pool to the database and pings it
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}
	sqlDB := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqlDB, pgdialect.New())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "postgres.Ping")
	}
	return &PostgresStore{db: db}, nil
}

// NewPostgresStoreWithDB wraps an existing bun database (tests, custom pools)
func NewPostgresStoreWithDB(db *bun.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// CreateSchema creates the tables and indexes if they don't exist
func (s *PostgresStore) CreateSchema(ctx context.Context) error {
	models := []interface{}{
		(*types.Identity)(nil),
		(*types.FeatureVerification)(nil),
		(*types.Message)(nil),
	}
	for _, model := range models {
		if _, err := s.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return errors.Wrap(err, "postgres.CreateSchema.CreateTable")
		}
	}
	indexes := []struct {
		model   interface{}
		name    string
		columns []string
	}{
		{(*types.Message)(nil), "idx_messages_from_public_key", []string{"from_public_key"}},
		{(*types.Message)(nil), "idx_messages_to_public_key", []string{"to_public_key"}},
		{(*types.FeatureVerification)(nil), "idx_feature_verifications_public_key", []string{"public_key"}},
	}
	for _, idx := range indexes {
		_, err := s.db.NewCreateIndex().Model(idx.model).Index(idx.name).Column(idx.columns...).IfNotExists().Exec(ctx)
		if err != nil {
			return errors.Wrap(err, "postgres.CreateSchema.CreateIndex")
		}
	}
	level.Info(global.Logger).Log("msg", "database schema ready")
	return nil
}

func (s *PostgresStore) CreateOrUpdateIdentity(ctx context.Context, publicKey string, displayName *string) (*types.Identity, error) {
	identity := &types.Identity{
		PublicKey:   publicKey,
		DisplayName: displayName,
	}
	_, err := s.db.NewInsert().
		Model(identity).
		On("CONFLICT (public_key) DO UPDATE").
		// keep the stored display name when none was provided
		Set("display_name = COALESCE(EXCLUDED.display_name, ?TableAlias.display_name)").
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, handleError(errors.Wrap(err, "postgres.CreateOrUpdateIdentity"))
	}
	return identity, nil
}

func (s *PostgresStore) GetIdentity(ctx context.Context, publicKey string) (*types.Identity, error) {
	identity := new(types.Identity)
	err := s.db.NewSelect().Model(identity).Where("public_key = ?", publicKey).Scan(ctx)
	if err != nil {
		return nil, handleError(err)
	}
	return identity, nil
}

func (s *PostgresStore) UpdateDisplayName(ctx context.Context, publicKey string, displayName string) (*types.Identity, error) {
	identity := new(types.Identity)
	_, err := s.db.NewUpdate().
		Model(identity).
		Set("display_name = ?", displayName).
		Where("public_key = ?", publicKey).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, handleError(err)
	}
	if identity.PublicKey == "" {
		return nil, types.ErrNotFound
	}
	return identity, nil
}

func (s *PostgresStore) MarkIdentityPublished(ctx context.Context, publicKey string, txHash string) (bool, error) {
	res, err := s.db.NewUpdate().
		Model((*types.Identity)(nil)).
		Set("onchain_tx_hash = ?", txHash).
		Set("is_verified = ?", true).
		Where("public_key = ?", publicKey).
		Exec(ctx)
	if err != nil {
		return false, handleError(errors.Wrap(err, "postgres.MarkIdentityPublished"))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (s *PostgresStore) CreateMessage(ctx context.Context, message *types.Message) error {
	_, err := s.db.NewInsert().Model(message).Returning("*").Exec(ctx)
	return handleError(err)
}

func (s *PostgresStore) GetMessageByTxHash(ctx context.Context, txHash string) (*types.Message, error) {
	message := new(types.Message)
	err := s.db.NewSelect().Model(message).Where("tx_hash = ?", txHash).Scan(ctx)
	if err != nil {
		return nil, handleError(err)
	}
	return message, nil
}

func (s *PostgresStore) ListMessagesByPublicKey(ctx context.Context, publicKey string) ([]*types.Message, error) {
	messages := make([]*types.Message, 0)
	err := s.db.NewSelect().
		Model(&messages).
		WhereOr("from_public_key = ?", publicKey).
		WhereOr("to_public_key = ?", publicKey).
		OrderExpr("created_at DESC, id DESC").
		Scan(ctx)
	if err != nil {
		return nil, handleError(errors.Wrap(err, "postgres.ListMessagesByPublicKey"))
	}
	return messages, nil
}

func (s *PostgresStore) CreateFeatureVerification(ctx context.Context, verification *types.FeatureVerification) error {
	_, err := s.db.NewInsert().Model(verification).Returning("*").Exec(ctx)
	return handleError(err)
}

func (s *PostgresStore) GetFeatureVerification(ctx context.Context, publicKey string, featureName string) (*types.FeatureVerification, error) {
	verification := new(types.FeatureVerification)
	err := s.db.NewSelect().
		Model(verification).
		Where("public_key = ?", publicKey).
		Where("feature_name = ?", featureName).
		Scan(ctx)
	if err != nil {
		return nil, handleError(err)
	}
	return verification, nil
}

func (s *PostgresStore) ListFeatureVerifications(ctx context.Context, publicKey string) ([]*types.FeatureVerification, error) {
	verifications := make([]*types.FeatureVerification, 0)
	err := s.db.NewSelect().
		Model(&verifications).
		Where("public_key = ?", publicKey).
		OrderExpr("verified_at DESC, id DESC").
		Scan(ctx)
	if err != nil {
		return nil, handleError(errors.Wrap(err, "postgres.ListFeatureVerifications"))
	}
	return verifications, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
