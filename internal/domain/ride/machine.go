package ride

import (
	"errors"
	"fmt"
	"time"

	"ride-hail-client/internal/domain/auth"
)

var (
	ErrIllegalTransition = errors.New("illegal ride transition")
	ErrUnauthorizedRole  = errors.New("role cannot perform this action")
	ErrUnknownRide       = errors.New("unknown ride")
	ErrDriverRequired    = errors.New("driver profile required")
)

// TransitionError 描述被拒絕的轉換。
type TransitionError struct {
	From   Status
	Action Action
	Role   auth.Role
	Err    error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s cannot %s a %s ride: %v", e.Role, e.Action, e.From, e.Err)
}

func (e *TransitionError) Unwrap() error { return e.Err }

type edge struct {
	from   Status
	action Action
}

var transitions = map[edge]Status{
	{StatusRequested, ActionAccept}:    StatusAccepted,
	{StatusRequested, ActionCancel}:    StatusCancelled,
	{StatusAccepted, ActionStart}:      StatusInProgress,
	{StatusAccepted, ActionCancel}:     StatusCancelled,
	{StatusInProgress, ActionComplete}: StatusCompleted,
}

var actionRoles = map[Action][]auth.Role{
	ActionAccept:   {auth.RoleDriver},
	ActionStart:    {auth.RoleDriver},
	ActionComplete: {auth.RoleDriver},
	ActionCancel:   {auth.RoleClient, auth.RoleDriver},
}

// CanPerform 角色在任何狀態下是否有資格執行此操作。
func CanPerform(role auth.Role, action Action) bool {
	for _, r := range actionRoles[action] {
		if r == role {
			return true
		}
	}
	return false
}

// Next 依目前狀態、操作與角色計算下一個狀態。
// 角色先檢查：角色永遠不能做的操作回 ErrUnauthorizedRole，其餘不在表內的回 ErrIllegalTransition。
func Next(from Status, action Action, role auth.Role) (Status, error) {
	if !CanPerform(role, action) {
		return "", &TransitionError{From: from, Action: action, Role: role, Err: ErrUnauthorizedRole}
	}
	next, ok := transitions[edge{from, action}]
	if !ok {
		return "", &TransitionError{From: from, Action: action, Role: role, Err: ErrIllegalTransition}
	}
	return next, nil
}

// Actor 執行操作的一方；accept 時必須帶司機檔案。
type Actor struct {
	Role   auth.Role
	Driver *auth.Driver
}

// Apply 回傳套用操作後的行程副本，不修改輸入。
// accept 是唯一綁定司機的時機，且只能綁定一次。
func Apply(r Ride, action Action, actor Actor, at time.Time) (Ride, error) {
	next, err := Next(r.Status, action, actor.Role)
	if err != nil {
		return r, err
	}
	if action == ActionAccept {
		if r.Driver != nil {
			return r, &TransitionError{From: r.Status, Action: action, Role: actor.Role, Err: ErrIllegalTransition}
		}
		if actor.Driver == nil {
			return r, ErrDriverRequired
		}
		d := *actor.Driver
		r.Driver = &d
	}
	r.Status = next
	r.UpdatedAt = at
	return r, nil
}

// AllowedActions 列出角色在此狀態下可執行的操作，供畫面決定顯示哪些按鈕。
func AllowedActions(status Status, role auth.Role) []Action {
	var out []Action
	for _, a := range []Action{ActionAccept, ActionStart, ActionComplete, ActionCancel} {
		if _, err := Next(status, a, role); err == nil {
			out = append(out, a)
		}
	}
	return out
}
