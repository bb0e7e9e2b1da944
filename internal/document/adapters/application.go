// Package adapters bridges document ports to the application module.
package adapters

import (
	"context"

	appservice "hsaonboard/internal/application/service"
	"hsaonboard/pkg/domain"
)

// ApplicationChecker verifies upload targets against the application module.
type ApplicationChecker struct {
	apps *appservice.Service
}

func NewApplicationChecker(apps *appservice.Service) *ApplicationChecker {
	return &ApplicationChecker{apps: apps}
}

func (c *ApplicationChecker) Exists(ctx context.Context, id domain.ApplicationID) error {
	_, err := c.apps.Get(ctx, id)
	return err
}
