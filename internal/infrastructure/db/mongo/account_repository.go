package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/appiso/access-control/internal/core/domain"
	"github.com/appiso/access-control/internal/core/ports"
)

const collectionAccounts = "accounts"

type AccountRepository struct {
	col *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{col: db.Collection(collectionAccounts)}
}

type accountDocument struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Username       string             `bson:"username"`
	PasswordHash   string             `bson:"password_hash"`
	Role           string             `bson:"role"`
	Active         bool               `bson:"active"`
	FailedAttempts int                `bson:"failed_attempts"`
	LockedUntil    *time.Time         `bson:"locked_until"`
	CreatedAt      time.Time          `bson:"created_at"`
}

func (d accountDocument) toDomain() *domain.Account {
	a := &domain.Account{
		ID:             d.ID.Hex(),
		Username:       d.Username,
		PasswordHash:   d.PasswordHash,
		Role:           domain.Role(d.Role),
		Active:         d.Active,
		FailedAttempts: d.FailedAttempts,
		CreatedAt:      d.CreatedAt.UTC(),
	}
	if d.LockedUntil != nil {
		until := d.LockedUntil.UTC()
		a.LockedUntil = &until
	}
	return a
}

// Create inserts a new account. The unique username index turns a racing
// duplicate into domain.ErrAccountExists.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := accountDocument{
		Username:       account.Username,
		PasswordHash:   account.PasswordHash,
		Role:           string(account.Role),
		Active:         account.Active,
		FailedAttempts: account.FailedAttempts,
		LockedUntil:    account.LockedUntil,
		CreatedAt:      account.CreatedAt,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrAccountExists
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("insert account: unexpected id type %T", res.InsertedID)
	}
	doc.ID = oid
	return doc.toDomain(), nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrAccountNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *AccountRepository) findOne(ctx context.Context, filter bson.M) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc accountDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return doc.toDomain(), nil
}

// UpdateLoginState only touches failed_attempts and locked_until.
func (r *AccountRepository) UpdateLoginState(ctx context.Context, id string, failedAttempts int, lockedUntil *time.Time) error {
	return r.set(ctx, id, bson.M{
		"failed_attempts": failedAttempts,
		"locked_until":    lockedUntil,
	})
}

func (r *AccountRepository) SetActive(ctx context.Context, id string, active bool) error {
	return r.set(ctx, id, bson.M{"active": active})
}

func (r *AccountRepository) set(ctx context.Context, id string, fields bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrAccountNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count accounts: %w", err)
	}
	return n, nil
}

// EnsureIndexes creates the unique username index. Usernames are compared
// case-sensitively, so no collation is set.
func (r *AccountRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_username"),
	})
	return err
}

var _ ports.AccountRepository = (*AccountRepository)(nil)
