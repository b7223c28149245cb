package mongo

import (
	"context"
	"errors"
	"time"

	"liftlog/workout-app/internal/domain"
	"liftlog/workout-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	planCollectionName       = "plans"
	planModuleCollectionName = "plan_modules"
)

// mongoPlanRepository implements repository.PlanRepository
type mongoPlanRepository struct {
	client  *mongo.Client
	plans   *mongo.Collection
	modules *mongo.Collection
	// Overrides are owned by the plan and cascade on delete.
	overrides *mongo.Collection
}

// NewMongoPlanRepository creates a new Plan repository.
func NewMongoPlanRepository(db *mongo.Database) repository.PlanRepository {
	return &mongoPlanRepository{
		client:    db.Client(),
		plans:     db.Collection(planCollectionName),
		modules:   db.Collection(planModuleCollectionName),
		overrides: db.Collection(overrideCollectionName),
	}
}

// Create inserts a plan together with its modules in a single transaction so
// a COMPOSITE plan is never observable without its modules.
func (r *mongoPlanRepository) Create(ctx context.Context, plan *domain.Plan, modules []domain.PlanModule) (primitive.ObjectID, error) {
	if plan.UserID == primitive.NilObjectID || plan.Name == "" {
		return primitive.NilObjectID, errors.New("plan requires userId and name")
	}
	now := time.Now().UTC()
	plan.ID = primitive.NewObjectID()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	docs := make([]interface{}, 0, len(modules))
	for i := range modules {
		modules[i].ID = primitive.NewObjectID()
		modules[i].PlanID = plan.ID
		// A minimal creation-time skew keeps insertion order recoverable for
		// the resolver's priority tie-break.
		modules[i].CreatedAt = now.Add(time.Duration(i) * time.Millisecond)
		docs = append(docs, modules[i])
	}

	err := withTransaction(ctx, r.client, func(sc mongo.SessionContext) error {
		if _, err := r.plans.InsertOne(sc, plan); err != nil {
			return err
		}
		if len(docs) > 0 {
			if _, err := r.modules.InsertMany(sc, docs); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return primitive.NilObjectID, err
	}
	return plan.ID, nil
}

// GetByID retrieves a single plan.
func (r *mongoPlanRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error) {
	var plan domain.Plan
	err := r.plans.FindOne(ctx, bson.M{"_id": id}).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// ListByUser retrieves all plans owned by a user, newest first.
func (r *mongoPlanRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Plan, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.plans.Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var plans []domain.Plan
	if err = cursor.All(ctx, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// GetModules retrieves a plan's modules in (priority, creation) order.
func (r *mongoPlanRepository) GetModules(ctx context.Context, planID primitive.ObjectID) ([]domain.PlanModule, error) {
	findOptions := options.Find().SetSort(bson.D{
		{Key: "priority", Value: 1},
		{Key: "createdAt", Value: 1},
		{Key: "_id", Value: 1},
	})
	cursor, err := r.modules.Find(ctx, bson.M{"planId": planID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var modules []domain.PlanModule
	if err = cursor.All(ctx, &modules); err != nil {
		return nil, err
	}
	return modules, nil
}

// Delete removes a plan and cascades to its modules and overrides in one
// transaction. The userId filter enforces ownership at the DB level.
func (r *mongoPlanRepository) Delete(ctx context.Context, planID, userID primitive.ObjectID) error {
	return withTransaction(ctx, r.client, func(sc mongo.SessionContext) error {
		result, err := r.plans.DeleteOne(sc, bson.M{"_id": planID, "userId": userID})
		if err != nil {
			return err
		}
		if result.DeletedCount == 0 {
			return repository.ErrNotFound
		}
		if _, err := r.modules.DeleteMany(sc, bson.M{"planId": planID}); err != nil {
			return err
		}
		if _, err := r.overrides.DeleteMany(sc, bson.M{"planId": planID}); err != nil {
			return err
		}
		return nil
	})
}

// EnsurePlanIndexes creates necessary indexes. Call during startup.
func EnsurePlanIndexes(ctx context.Context, plans, modules *mongo.Collection) {
	planIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
	}
	_, _ = plans.Indexes().CreateMany(ctx, planIndexes)

	moduleIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "planId", Value: 1}, {Key: "priority", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = modules.Indexes().CreateMany(ctx, moduleIndexes)
}
