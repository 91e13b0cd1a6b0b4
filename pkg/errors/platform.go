package errors

import (
	"net/http"

	"google.golang.org/grpc/codes"
)

// Platform request errors (30 01 xxx).
var (
	// ErrRoleScopeInvalid indicates a role that is neither global nor bound to a project.
	ErrRoleScopeInvalid = Register(&Errno{
		Code:      MakeCode(ServicePlatform, CategoryRequest, 1),
		HTTP:      http.StatusBadRequest,
		GRPCCode:  codes.InvalidArgument,
		MessageEN: "Role must be global or scoped to a project",
		MessageZH: "角色必须是全局角色或绑定到项目",
	})

	// ErrUnknownPermission indicates a grant referencing a permission id
	// that is not part of the permission catalog.
	ErrUnknownPermission = Register(&Errno{
		Code:      MakeCode(ServicePlatform, CategoryRequest, 2),
		HTTP:      http.StatusBadRequest,
		GRPCCode:  codes.InvalidArgument,
		MessageEN: "Unknown permission",
		MessageZH: "未知权限",
	})
)

// Platform authorization errors (30 03 xxx).
var (
	// ErrNoRolesAssigned indicates the user has no membership in any project.
	ErrNoRolesAssigned = Register(&Errno{
		Code:      MakeCode(ServicePlatform, CategoryPermission, 1),
		HTTP:      http.StatusForbidden,
		GRPCCode:  codes.PermissionDenied,
		MessageEN: "User has no roles assigned",
		MessageZH: "用户未分配任何角色",
	})

	// ErrNoProjectAccess indicates the user has no membership in the target project.
	ErrNoProjectAccess = Register(&Errno{
		Code:      MakeCode(ServicePlatform, CategoryPermission, 2),
		HTTP:      http.StatusForbidden,
		GRPCCode:  codes.PermissionDenied,
		MessageEN: "User does not have access to this project",
		MessageZH: "用户无权访问该项目",
	})

	// ErrMissingPermission indicates the user's role does not grant the permission.
	ErrMissingPermission = Register(&Errno{
		Code:      MakeCode(ServicePlatform, CategoryPermission, 3),
		HTTP:      http.StatusForbidden,
		GRPCCode:  codes.PermissionDenied,
		MessageEN: "User does not have the required permission",
		MessageZH: "用户缺少所需权限",
	})

	// ErrNotProjectAdmin indicates the operation requires the project admin role.
	ErrNotProjectAdmin = Register(&Errno{
		Code:      MakeCode(ServicePlatform, CategoryPermission, 4),
		HTTP:      http.StatusForbidden,
		GRPCCode:  codes.PermissionDenied,
		MessageEN: "Operation requires the project admin role",
		MessageZH: "该操作需要项目管理员角色",
	})

	// ErrSuperRequired indicates the operation is restricted to super users.
	ErrSuperRequired = Register(&Errno{
		Code:      MakeCode(ServicePlatform, CategoryPermission, 5),
		HTTP:      http.StatusForbidden,
		GRPCCode:  codes.PermissionDenied,
		MessageEN: "Operation requires super user",
		MessageZH: "该操作需要超级用户",
	})
)

// Platform resource errors (30 04 xxx).
var (
	ErrUserNotFound = Register(&Errno{
		Code:      MakeCode(ServicePlatform, CategoryResource, 1),
		HTTP:      http.StatusNotFound,
		GRPCCode:  codes.NotFound,
		MessageEN: "User not found",
		MessageZH: "用户不存在",
	})

	ErrProjectNotFound = Register(&Errno{
		Code:      MakeCode(ServicePlatform, CategoryResource, 2),
		HTTP:      http.StatusNotFound,
		GRPCCode:  codes.NotFound,
		MessageEN: "Project not found",
		MessageZH: "项目不存在",
	})

	ErrRoleNotFound = Register(&Errno{
		Code:      MakeCode(ServicePlatform, CategoryResource, 3),
		HTTP:      http.StatusNotFound,
		GRPCCode:  codes.NotFound,
		MessageEN: "Role not found",
		MessageZH: "角色不存在",
	})

	ErrMembershipNotFound = Register(&Errno{
		Code:      MakeCode(ServicePlatform, CategoryResource, 4),
		HTTP:      http.StatusNotFound,
		GRPCCode:  codes.NotFound,
		MessageEN: "Membership not found",
		MessageZH: "项目成员不存在",
	})

	ErrDashboardNotFound = Register(&Errno{
		Code:      MakeCode(ServicePlatform, CategoryResource, 5),
		HTTP:      http.StatusNotFound,
		GRPCCode:  codes.NotFound,
		MessageEN: "Dashboard not found",
		MessageZH: "仪表盘不存在",
	})

	ErrChartNotFound = Register(&Errno{
		Code:      MakeCode(ServicePlatform, CategoryResource, 6),
		HTTP:      http.StatusNotFound,
		GRPCCode:  codes.NotFound,
		MessageEN: "Chart not found",
		MessageZH: "图表不存在",
	})

	ErrConnectionNotFound = Register(&Errno{
		Code:      MakeCode(ServicePlatform, CategoryResource, 7),
		HTTP:      http.StatusNotFound,
		GRPCCode:  codes.NotFound,
		MessageEN: "Database connection not found",
		MessageZH: "数据库连接不存在",
	})

	ErrShareNotFound = Register(&Errno{
		Code:      MakeCode(ServicePlatform, CategoryResource, 8),
		HTTP:      http.StatusNotFound,
		GRPCCode:  codes.NotFound,
		MessageEN: "Resource share not found",
		MessageZH: "资源共享记录不存在",
	})
)

// Platform conflict errors (30 05 xxx).
var (
	ErrUserExists = Register(&Errno{
		Code:      MakeCode(ServicePlatform, CategoryConflict, 1),
		HTTP:      http.StatusConflict,
		GRPCCode:  codes.AlreadyExists,
		MessageEN: "User already exists",
		MessageZH: "用户已存在",
	})

	ErrProjectNameTaken = Register(&Errno{
		Code:      MakeCode(ServicePlatform, CategoryConflict, 2),
		HTTP:      http.StatusConflict,
		GRPCCode:  codes.AlreadyExists,
		MessageEN: "Project name already taken",
		MessageZH: "项目名称已被占用",
	})

	ErrMembershipExists = Register(&Errno{
		Code:      MakeCode(ServicePlatform, CategoryConflict, 3),
		HTTP:      http.StatusConflict,
		GRPCCode:  codes.AlreadyExists,
		MessageEN: "User is already a member of this project",
		MessageZH: "用户已是该项目成员",
	})

	ErrAPIKeyExists = Register(&Errno{
		Code:      MakeCode(ServicePlatform, CategoryConflict, 4),
		HTTP:      http.StatusConflict,
		GRPCCode:  codes.AlreadyExists,
		MessageEN: "API key already exists for this user and project",
		MessageZH: "该用户在此项目下已有 API 密钥",
	})
)

// Query-generation service errors (90 xx xxx).
var (
	// ErrQueryGenUnavailable indicates the query-generation backend is unreachable.
	ErrQueryGenUnavailable = Register(&Errno{
		Code:      MakeCode(ServiceQueryGen, CategoryNetwork, 1),
		HTTP:      http.StatusServiceUnavailable,
		GRPCCode:  codes.Unavailable,
		MessageEN: "Query generation service unavailable",
		MessageZH: "查询生成服务不可用",
	})

	// ErrQueryGenFailed indicates the query-generation backend rejected the request.
	ErrQueryGenFailed = Register(&Errno{
		Code:      MakeCode(ServiceQueryGen, CategoryInternal, 1),
		HTTP:      http.StatusBadGateway,
		GRPCCode:  codes.Internal,
		MessageEN: "Query generation failed",
		MessageZH: "查询生成失败",
	})
)
