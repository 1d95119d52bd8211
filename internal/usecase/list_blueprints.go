package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/trebuchet-org/sling/internal/domain/models"
)

// ListBlueprints lists the deployable contracts of the build output
type ListBlueprints struct {
	resolver BlueprintResolver
}

// NewListBlueprints creates a new ListBlueprints use case
func NewListBlueprints(resolver BlueprintResolver) *ListBlueprints {
	return &ListBlueprints{resolver: resolver}
}

// Run returns the blueprints sorted by fully qualified key
func (uc *ListBlueprints) Run(ctx context.Context) ([]*models.Blueprint, error) {
	blueprints, err := uc.resolver.ListBlueprints(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list blueprints: %w", err)
	}

	sort.Slice(blueprints, func(i, j int) bool {
		return blueprints[i].Key() < blueprints[j].Key()
	})

	return blueprints, nil
}
