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
	programTemplateCollectionName = "program_templates"
	programVersionCollectionName  = "program_versions"
)

// mongoProgramRepository implements repository.ProgramRepository
type mongoProgramRepository struct {
	templates *mongo.Collection
	versions  *mongo.Collection
}

// NewMongoProgramRepository creates a new Program repository.
func NewMongoProgramRepository(db *mongo.Database) repository.ProgramRepository {
	return &mongoProgramRepository{
		templates: db.Collection(programTemplateCollectionName),
		versions:  db.Collection(programVersionCollectionName),
	}
}

// CreateTemplate inserts a new program template.
func (r *mongoProgramRepository) CreateTemplate(ctx context.Context, template *domain.ProgramTemplate) (primitive.ObjectID, error) {
	if template.Slug == "" || template.Name == "" {
		return primitive.NilObjectID, errors.New("program template requires slug and name")
	}
	template.ID = primitive.NewObjectID()
	template.CreatedAt = time.Now().UTC()

	result, err := r.templates.InsertOne(ctx, template)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrConflict
		}
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted template ID")
	}
	return insertedID, nil
}

// GetTemplateByID retrieves a single template.
func (r *mongoProgramRepository) GetTemplateByID(ctx context.Context, id primitive.ObjectID) (*domain.ProgramTemplate, error) {
	var template domain.ProgramTemplate
	err := r.templates.FindOne(ctx, bson.M{"_id": id}).Decode(&template)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &template, nil
}

// GetTemplateBySlug retrieves a template by its stable external key.
func (r *mongoProgramRepository) GetTemplateBySlug(ctx context.Context, slug string) (*domain.ProgramTemplate, error) {
	var template domain.ProgramTemplate
	err := r.templates.FindOne(ctx, bson.M{"slug": slug}).Decode(&template)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &template, nil
}

// ListTemplates retrieves every template visible to the user: public ones
// plus the user's own private ones.
func (r *mongoProgramRepository) ListTemplates(ctx context.Context, userID primitive.ObjectID) ([]domain.ProgramTemplate, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"visibility": domain.VisibilityPublic},
		bson.M{"ownerUserId": userID},
	}}
	findOptions := options.Find().SetSort(bson.D{{Key: "slug", Value: 1}})

	cursor, err := r.templates.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var templates []domain.ProgramTemplate
	if err = cursor.All(ctx, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

// CreateVersion appends a new immutable version for a template. The version
// number is allocated as latest+1; the unique (templateId, version) index
// turns a concurrent allocation race into ErrConflict instead of a duplicate.
func (r *mongoProgramRepository) CreateVersion(ctx context.Context, version *domain.ProgramVersion) (primitive.ObjectID, error) {
	if version.TemplateID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("program version requires templateId")
	}
	if version.Definition.Kind == "" {
		return primitive.NilObjectID, errors.New("program version requires definition.kind")
	}

	latest, err := r.GetLatestVersion(ctx, version.TemplateID)
	switch {
	case err == nil:
		version.Version = latest.Version + 1
		if version.ParentVersionID == nil {
			parentID := latest.ID
			version.ParentVersionID = &parentID
		}
	case errors.Is(err, repository.ErrNotFound):
		version.Version = 1
	default:
		return primitive.NilObjectID, err
	}

	version.ID = primitive.NewObjectID()
	version.CreatedAt = time.Now().UTC()

	result, err := r.versions.InsertOne(ctx, version)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrConflict
		}
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted version ID")
	}
	return insertedID, nil
}

// GetVersionByID retrieves a single program version.
func (r *mongoProgramRepository) GetVersionByID(ctx context.Context, id primitive.ObjectID) (*domain.ProgramVersion, error) {
	var version domain.ProgramVersion
	err := r.versions.FindOne(ctx, bson.M{"_id": id}).Decode(&version)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &version, nil
}

// GetLatestVersion retrieves the highest-numbered version of a template.
func (r *mongoProgramRepository) GetLatestVersion(ctx context.Context, templateID primitive.ObjectID) (*domain.ProgramVersion, error) {
	findOptions := options.FindOne().SetSort(bson.D{{Key: "version", Value: -1}})
	var version domain.ProgramVersion
	err := r.versions.FindOne(ctx, bson.M{"templateId": templateID}, findOptions).Decode(&version)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &version, nil
}

// ListVersions retrieves all versions of a template, ascending.
func (r *mongoProgramRepository) ListVersions(ctx context.Context, templateID primitive.ObjectID) ([]domain.ProgramVersion, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "version", Value: 1}})
	cursor, err := r.versions.Find(ctx, bson.M{"templateId": templateID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var versions []domain.ProgramVersion
	if err = cursor.All(ctx, &versions); err != nil {
		return nil, err
	}
	return versions, nil
}

// EnsureProgramIndexes creates necessary indexes. Call during startup.
func EnsureProgramIndexes(ctx context.Context, templates, versions *mongo.Collection) {
	templateIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, _ = templates.Indexes().CreateMany(ctx, templateIndexes)

	versionIndexes := []mongo.IndexModel{
		{
			// Enforces monotonic, immutable version numbering per template.
			Keys:    bson.D{{Key: "templateId", Value: 1}, {Key: "version", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, _ = versions.Indexes().CreateMany(ctx, versionIndexes)
}
