package sharing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"quarry/internal/repository/postgres"
)

// Role is an effective permission level on an asset, ordered weakest
// to strongest.
type Role string

const (
	RoleCanView    Role = "can_view"
	RoleCanEdit    Role = "can_edit"
	RoleFullAccess Role = "full_access"
	RoleOwner      Role = "owner"
)

var roleRank = map[Role]int{
	RoleCanView:    1,
	RoleCanEdit:    2,
	RoleFullAccess: 3,
	RoleOwner:      4,
}

// Satisfies reports whether the role grants at least the required
// level.
func (r Role) Satisfies(required Role) bool {
	return roleRank[r] >= roleRank[required]
}

// CheckParams identifies the permission question being asked.
type CheckParams struct {
	UserID       string
	AssetID      string
	AssetType    string
	RequiredRole Role
}

// Access is the answer to a permission check.
type Access struct {
	HasAccess     bool
	EffectiveRole Role
}

// AccessChecker is the capability-check collaborator. The chat
// orchestration treats it as a black box.
type AccessChecker interface {
	Check(ctx context.Context, params CheckParams) (*Access, error)
}

// PermissionChecker implements AccessChecker over the asset_permissions
// table, falling back to creator ownership.
type PermissionChecker struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewPermissionChecker creates a postgres-backed AccessChecker.
func NewPermissionChecker(config *postgres.RepositoryConfig) AccessChecker {
	return &PermissionChecker{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Check resolves the user's effective role on an asset. The creator of
// a chat always holds owner; otherwise the strongest explicit grant in
// asset_permissions wins.
func (c *PermissionChecker) Check(ctx context.Context, params CheckParams) (*Access, error) {
	if params.AssetType == "chat" {
		query := fmt.Sprintf(`SELECT created_by FROM %s WHERE id = $1`, c.tables.Chats)
		var createdBy string
		err := postgres.GetExecutor(ctx, c.pool).QueryRow(ctx, query, params.AssetID).Scan(&createdBy)
		if err != nil && !postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("check chat ownership: %w", err)
		}
		if err == nil && createdBy == params.UserID {
			return &Access{HasAccess: true, EffectiveRole: RoleOwner}, nil
		}
	}

	query := fmt.Sprintf(`
		SELECT role FROM %s
		WHERE asset_id = $1 AND asset_type = $2 AND user_id = $3
	`, c.tables.AssetPermissions)

	var role Role
	err := postgres.GetExecutor(ctx, c.pool).QueryRow(ctx, query,
		params.AssetID, params.AssetType, params.UserID).Scan(&role)
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return &Access{HasAccess: false}, nil
		}
		return nil, fmt.Errorf("check asset permission: %w", err)
	}

	return &Access{
		HasAccess:     role.Satisfies(params.RequiredRole),
		EffectiveRole: role,
	}, nil
}
