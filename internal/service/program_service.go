package service

import (
	"context"
	"errors"
	"strings"

	"liftlog/workout-app/internal/domain"
	"liftlog/workout-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrProgramNotFound     = errors.New("program template not found")
	ErrProgramSlugTaken    = errors.New("program slug is already taken")
	ErrProgramAccessDenied = errors.New("access denied to this program template")
	ErrProgramVersionRace  = errors.New("concurrent version creation, retry")
	ErrInvalidProgramInput = errors.New("program validation failed")
	ErrVersionNotFound     = errors.New("program version not found")
)

// ProgramService manages the versioned, append-only program template store.
type ProgramService interface {
	CreateTemplate(ctx context.Context, ownerID primitive.ObjectID, slug, name string, programType domain.ProgramType, visibility domain.Visibility, tags []string, definition domain.ProgramDefinition, defaults map[string]any) (*domain.ProgramTemplate, *domain.ProgramVersion, error)
	GetTemplate(ctx context.Context, userID primitive.ObjectID, slug string) (*domain.ProgramTemplate, *domain.ProgramVersion, error)
	ListTemplates(ctx context.Context, userID primitive.ObjectID) ([]domain.ProgramTemplate, error)
	AppendVersion(ctx context.Context, userID primitive.ObjectID, slug string, definition domain.ProgramDefinition, defaults map[string]any, changelog string) (*domain.ProgramVersion, error)
	ListVersions(ctx context.Context, userID primitive.ObjectID, slug string) ([]domain.ProgramVersion, error)
	Fork(ctx context.Context, userID primitive.ObjectID, slug, newSlug, newName string) (*domain.ProgramTemplate, *domain.ProgramVersion, error)
}

// programService implements the ProgramService interface.
type programService struct {
	programRepo repository.ProgramRepository
}

// NewProgramService creates a new instance of programService.
func NewProgramService(programRepo repository.ProgramRepository) ProgramService {
	return &programService{programRepo: programRepo}
}

// CreateTemplate creates a template together with its first version.
func (s *programService) CreateTemplate(ctx context.Context, ownerID primitive.ObjectID, slug, name string, programType domain.ProgramType, visibility domain.Visibility, tags []string, definition domain.ProgramDefinition, defaults map[string]any) (*domain.ProgramTemplate, *domain.ProgramVersion, error) {
	slug = strings.TrimSpace(strings.ToLower(slug))
	if slug == "" || name == "" || definition.Kind == "" {
		return nil, nil, ErrInvalidProgramInput
	}
	if programType == "" {
		programType = domain.ProgramTypeLogic
	}
	if visibility == "" {
		visibility = domain.VisibilityPrivate
	}

	template := &domain.ProgramTemplate{
		Slug:        slug,
		Name:        name,
		Type:        programType,
		Visibility:  visibility,
		OwnerUserID: &ownerID,
		Tags:        tags,
	}
	templateID, err := s.programRepo.CreateTemplate(ctx, template)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, nil, ErrProgramSlugTaken
		}
		return nil, nil, err
	}
	template.ID = templateID

	version := &domain.ProgramVersion{
		TemplateID: templateID,
		Definition: definition,
		Defaults:   defaults,
		Changelog:  "initial version",
	}
	versionID, err := s.programRepo.CreateVersion(ctx, version)
	if err != nil {
		return nil, nil, err
	}
	version.ID = versionID
	return template, version, nil
}

// GetTemplate retrieves a template and its latest version, enforcing
// visibility.
func (s *programService) GetTemplate(ctx context.Context, userID primitive.ObjectID, slug string) (*domain.ProgramTemplate, *domain.ProgramVersion, error) {
	template, err := s.visibleTemplate(ctx, userID, slug)
	if err != nil {
		return nil, nil, err
	}
	latest, err := s.programRepo.GetLatestVersion(ctx, template.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return template, nil, nil
		}
		return nil, nil, err
	}
	return template, latest, nil
}

// ListTemplates retrieves every template visible to the user.
func (s *programService) ListTemplates(ctx context.Context, userID primitive.ObjectID) ([]domain.ProgramTemplate, error) {
	return s.programRepo.ListTemplates(ctx, userID)
}

// AppendVersion appends a new immutable version to an owned template.
func (s *programService) AppendVersion(ctx context.Context, userID primitive.ObjectID, slug string, definition domain.ProgramDefinition, defaults map[string]any, changelog string) (*domain.ProgramVersion, error) {
	template, err := s.visibleTemplate(ctx, userID, slug)
	if err != nil {
		return nil, err
	}
	if template.OwnerUserID == nil || *template.OwnerUserID != userID {
		return nil, ErrProgramAccessDenied
	}
	if definition.Kind == "" {
		return nil, ErrInvalidProgramInput
	}

	version := &domain.ProgramVersion{
		TemplateID: template.ID,
		Definition: definition,
		Defaults:   defaults,
		Changelog:  changelog,
	}
	versionID, err := s.programRepo.CreateVersion(ctx, version)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrProgramVersionRace
		}
		return nil, err
	}
	version.ID = versionID
	return version, nil
}

// ListVersions retrieves a template's version history.
func (s *programService) ListVersions(ctx context.Context, userID primitive.ObjectID, slug string) ([]domain.ProgramVersion, error) {
	template, err := s.visibleTemplate(ctx, userID, slug)
	if err != nil {
		return nil, err
	}
	return s.programRepo.ListVersions(ctx, template.ID)
}

// Fork copies a visible template into a new private one owned by the user,
// seeded with the source's latest definition and linked for lineage.
func (s *programService) Fork(ctx context.Context, userID primitive.ObjectID, slug, newSlug, newName string) (*domain.ProgramTemplate, *domain.ProgramVersion, error) {
	source, err := s.visibleTemplate(ctx, userID, slug)
	if err != nil {
		return nil, nil, err
	}
	latest, err := s.programRepo.GetLatestVersion(ctx, source.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrVersionNotFound
		}
		return nil, nil, err
	}

	newSlug = strings.TrimSpace(strings.ToLower(newSlug))
	if newSlug == "" {
		newSlug = slug + "-fork"
	}
	if newName == "" {
		newName = source.Name + " (fork)"
	}

	fork := &domain.ProgramTemplate{
		Slug:             newSlug,
		Name:             newName,
		Type:             source.Type,
		Visibility:       domain.VisibilityPrivate,
		OwnerUserID:      &userID,
		ParentTemplateID: &source.ID,
		Tags:             source.Tags,
	}
	forkID, err := s.programRepo.CreateTemplate(ctx, fork)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, nil, ErrProgramSlugTaken
		}
		return nil, nil, err
	}
	fork.ID = forkID

	version := &domain.ProgramVersion{
		TemplateID:      forkID,
		ParentVersionID: &latest.ID,
		Definition:      latest.Definition,
		Defaults:        latest.Defaults,
		Changelog:       "forked from " + slug,
	}
	versionID, err := s.programRepo.CreateVersion(ctx, version)
	if err != nil {
		return nil, nil, err
	}
	version.ID = versionID
	return fork, version, nil
}

func (s *programService) visibleTemplate(ctx context.Context, userID primitive.ObjectID, slug string) (*domain.ProgramTemplate, error) {
	template, err := s.programRepo.GetTemplateBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProgramNotFound
		}
		return nil, err
	}
	if template.Visibility == domain.VisibilityPrivate {
		if template.OwnerUserID == nil || *template.OwnerUserID != userID {
			return nil, ErrProgramNotFound // Do not leak private templates
		}
	}
	return template, nil
}
