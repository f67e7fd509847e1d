// Package auth 定义角色到能力集合的纯映射，与传输层无关。
package auth

// Role 员工角色
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
	RoleViewer   Role = "viewer"
)

// Capability 单项操作能力
type Capability string

const (
	CapCreateTask               Capability = "task:create"
	CapClaimTask                Capability = "task:claim"
	CapHandleTask               Capability = "task:handle" // 可作为转派目标
	CapUploadPhoto              Capability = "task:upload_photo"
	CapCompleteTask             Capability = "task:complete"
	CapForceComplete            Capability = "task:force_complete"
	CapOverridePhotoRequirement Capability = "task:override_photo"
	CapBypassAssignment         Capability = "task:bypass_assignment"
	CapTransferTask             Capability = "task:transfer"
	CapMarkOverdue              Capability = "task:mark_overdue"
	CapCheckIn                  Capability = "checkin:create"
	CapCrossSite                Capability = "site:cross" // 可操作非本门店
	CapSubscribeNotifications   Capability = "notification:subscribe"
)

// CapabilitySet 能力集合
type CapabilitySet map[Capability]struct{}

// Has 判断是否具备某项能力
func (s CapabilitySet) Has(c Capability) bool {
	_, ok := s[c]
	return ok
}

func newSet(caps ...Capability) CapabilitySet {
	s := make(CapabilitySet, len(caps))
	for _, c := range caps {
		s[c] = struct{}{}
	}
	return s
}

var workerCaps = []Capability{
	CapClaimTask,
	CapHandleTask,
	CapUploadPhoto,
	CapCompleteTask,
	CapCheckIn,
}

var managerCaps = append([]Capability{
	CapCreateTask,
	CapForceComplete,
	CapOverridePhotoRequirement,
	CapBypassAssignment,
	CapTransferTask,
	CapMarkOverdue,
	CapSubscribeNotifications,
}, workerCaps...)

// CapabilitiesOf 返回角色对应的能力集合；未知角色返回空集合
// 每次调用返回新集合，调用方可安全修改
func CapabilitiesOf(role Role) CapabilitySet {
	switch role {
	case RoleAdmin:
		return newSet(append([]Capability{CapCrossSite}, managerCaps...)...)
	case RoleManager:
		return newSet(managerCaps...)
	case RoleEmployee:
		return newSet(workerCaps...)
	default:
		return CapabilitySet{}
	}
}

// Valid 是否为已知角色
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleEmployee, RoleViewer:
		return true
	}
	return false
}
