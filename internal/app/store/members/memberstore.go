// internal/app/store/members/memberstore.go
package memberstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sandoghapp/sandogh/internal/app/system/normalize"
	"github.com/sandoghapp/sandogh/internal/domain/models"
)

var (
	// ErrDuplicate is returned when a member with the same username or
	// email already exists.
	ErrDuplicate = errors.New("a member with this username or email already exists")

	errBadRole   = errors.New(`role must be "admin"|"member"`)
	errBadStatus = errors.New(`status must be "active"|"disabled"`)
)

// Store manages member records.
type Store struct {
	c *mongo.Collection
}

// New creates a member Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("members")}
}

// GetByID loads a member by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Member, error) {
	var m models.Member
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

// GetByUsername looks up a member by normalized username. Returns
// mongo.ErrNoDocuments if not found.
func (s *Store) GetByUsername(ctx context.Context, username string) (*models.Member, error) {
	var m models.Member
	if err := s.c.FindOne(ctx, bson.M{"username": normalize.Username(username)}).Decode(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Create inserts a new member after normalizing and validating fields. The
// caller supplies an already-hashed password.
func (s *Store) Create(ctx context.Context, m models.Member) (models.Member, error) {
	m.ID = primitive.NewObjectID()
	m.Username = normalize.Username(m.Username)
	m.FullName = normalize.Name(m.FullName)
	m.Email = normalize.Email(m.Email)
	if m.Status == "" {
		m.Status = models.StatusActive
	}
	if m.Role == "" {
		m.Role = models.RoleMember
	}

	switch m.Role {
	case models.RoleAdmin, models.RoleMember:
	default:
		return models.Member{}, errBadRole
	}
	switch m.Status {
	case models.StatusActive, models.StatusDisabled:
	default:
		return models.Member{}, errBadStatus
	}

	now := time.Now()
	m.CreatedAt = now
	m.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, m); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Member{}, ErrDuplicate
		}
		return models.Member{}, err
	}
	return m, nil
}

// Update holds the admin-editable fields of a member.
type Update struct {
	FullName string
	Email    string
	Role     string
	Status   string
}

// UpdateMember updates a member's profile fields.
func (s *Store) UpdateMember(ctx context.Context, id primitive.ObjectID, upd Update) error {
	switch upd.Role {
	case models.RoleAdmin, models.RoleMember:
	default:
		return errBadRole
	}
	switch upd.Status {
	case models.StatusActive, models.StatusDisabled:
	default:
		return errBadStatus
	}

	set := bson.M{
		"full_name":  normalize.Name(upd.FullName),
		"email":      normalize.Email(upd.Email),
		"role":       upd.Role,
		"status":     upd.Status,
		"updated_at": time.Now(),
	}
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if wafflemongo.IsDup(err) {
		return ErrDuplicate
	}
	return err
}

// SetLoanRequest records what the member wants from the next assignment
// run; zero opts them out.
func (s *Store) SetLoanRequest(ctx context.Context, id primitive.ObjectID, amount decimal.Decimal) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"loan_request_amount": amount,
		"updated_at":          time.Now(),
	}})
	return err
}

// AddToBalance increases a member's running balance by the given amount.
func (s *Store) AddToBalance(ctx context.Context, id primitive.ObjectID, amount decimal.Decimal) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$inc": bson.M{"balance": amount},
		"$set": bson.M{"updated_at": time.Now()},
	})
	return err
}

// ActiveMembers returns every member with active status, in stable
// username order.
func (s *Store) ActiveMembers(ctx context.Context) ([]models.Member, error) {
	opts := options.Find().SetSort(bson.D{{Key: "username", Value: 1}})
	cursor, err := s.c.Find(ctx, bson.M{"status": models.StatusActive}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var members []models.Member
	if err := cursor.All(ctx, &members); err != nil {
		return nil, err
	}
	return members, nil
}

// List returns all members regardless of status.
func (s *Store) List(ctx context.Context) ([]models.Member, error) {
	opts := options.Find().SetSort(bson.D{{Key: "username", Value: 1}})
	cursor, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var members []models.Member
	if err := cursor.All(ctx, &members); err != nil {
		return nil, err
	}
	return members, nil
}
