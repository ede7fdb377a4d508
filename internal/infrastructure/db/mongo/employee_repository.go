package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/appiso/access-control/internal/core/domain"
	"github.com/appiso/access-control/internal/core/ports"
)

const collectionEmployees = "employees"

type EmployeeRepository struct {
	col *mongo.Collection
}

func NewEmployeeRepository(db *mongo.Database) *EmployeeRepository {
	return &EmployeeRepository{col: db.Collection(collectionEmployees)}
}

type employeeDocument struct {
	ID     int64   `bson:"_id"`
	Name   string  `bson:"name"`
	Salary float64 `bson:"salary"`
}

func (r *EmployeeRepository) FindByID(ctx context.Context, id int64) (*domain.Employee, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc employeeDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("find employee: %w", err)
	}
	return &domain.Employee{ID: doc.ID, Name: doc.Name, Salary: doc.Salary}, nil
}

func (r *EmployeeRepository) Upsert(ctx context.Context, e *domain.Employee) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := employeeDocument{ID: e.ID, Name: e.Name, Salary: e.Salary}
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": e.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert employee: %w", err)
	}
	return nil
}

var _ ports.EmployeeRepository = (*EmployeeRepository)(nil)
