// Package directory is the thin registration and lookup layer over the
// identity and department nodes. The social engines only consume
// ResolveIdentity; the registration surface backs setup tooling.
package directory

import (
	"context"
	"fmt"
	"sort"

	"github.com/campusgraph/campusgraph/api/schemas"
	"go.uber.org/zap"
)

// Directory wraps a DirectoryStore with input validation and logging.
type Directory struct {
	store schemas.DirectoryStore
	log   *zap.Logger
}

// New creates a Directory over the given store.
func New(store schemas.DirectoryStore, logger *zap.Logger) *Directory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Directory{
		store: store,
		log:   logger.Named("Directory"),
	}
}

// RegisterDepartment creates or updates a department by id.
func (d *Directory) RegisterDepartment(ctx context.Context, dept schemas.Department) error {
	if dept.ID == "" {
		return fmt.Errorf("department id must not be empty")
	}
	if err := d.store.CreateDepartment(ctx, dept); err != nil {
		return err
	}
	d.log.Info("Department registered", zap.String("id", dept.ID), zap.String("name", dept.Name))
	return nil
}

// RegisterIdentity creates an identity node and links it to its
// department with the edge type the kind dictates.
func (d *Directory) RegisterIdentity(ctx context.Context, id schemas.Identity, departmentID, branch, course string) error {
	if id.Email == "" {
		return fmt.Errorf("identity email must not be empty")
	}
	if !id.Kind.Valid() {
		return fmt.Errorf("unknown identity kind %q", id.Kind)
	}
	if err := d.store.CreateIdentity(ctx, id, departmentID, branch, course); err != nil {
		return err
	}
	d.log.Info("Identity registered",
		zap.String("email", id.Email),
		zap.String("kind", string(id.Kind)),
		zap.String("department", departmentID),
	)
	return nil
}

// ResolveIdentity looks an identity up by email.
func (d *Directory) ResolveIdentity(ctx context.Context, email string) (schemas.Identity, error) {
	return d.store.ResolveIdentity(ctx, email)
}

// ListDepartments returns all departments, name ascending.
func (d *Directory) ListDepartments(ctx context.Context) ([]schemas.Department, error) {
	depts, err := d.store.Departments(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(depts, func(i, j int) bool { return depts[i].Name < depts[j].Name })
	return depts, nil
}
