// internal/groups/dto.go

package groups

type CreateGroupDTO struct {
	Name          string  `json:"name" validate:"required,min=1,max=100"`
	MinAttendance float64 `json:"min_attendance" validate:"omitempty,gt=0,lte=1"`
	MemberIDs     []int64 `json:"member_ids,omitempty"`
}

type UpdateGroupDTO struct {
	Name          *string  `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	MinAttendance *float64 `json:"min_attendance,omitempty" validate:"omitempty,gt=0,lte=1"`
}

type AddMemberDTO struct {
	UserID         int64   `json:"user_id" validate:"required"`
	PriorityWeight float64 `json:"priority_weight" validate:"omitempty,gt=0"`
}

type SetWeightDTO struct {
	PriorityWeight float64 `json:"priority_weight" validate:"required,gt=0"`
}
