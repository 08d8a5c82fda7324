package dto

import (
	"github.com/yukikurage/devboard-api/internal/models"
	"github.com/yukikurage/devboard-api/internal/services"
)

type RoleBreakdownDTO struct {
	Admins int64 `json:"admins"`
	Users  int64 `json:"users"`
}

type StatusBreakdownDTO struct {
	Todo       int64 `json:"todo"`
	InProgress int64 `json:"inProgress"`
	Done       int64 `json:"done"`
}

type PriorityBreakdownDTO struct {
	High   int64 `json:"high"`
	Medium int64 `json:"medium"`
	Low    int64 `json:"low"`
}

// ActivityDTO is one line of the dashboard's recent activity list
type ActivityDTO struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Count   int64  `json:"count"`
}

// DashboardDTO is the admin dashboard payload
type DashboardDTO struct {
	TotalUsers            int64                `json:"totalUsers"`
	TotalTasks            int64                `json:"totalTasks"`
	TotalComments         int64                `json:"totalComments"`
	UserRoleBreakdown     RoleBreakdownDTO     `json:"userRoleBreakdown"`
	TaskStatusBreakdown   StatusBreakdownDTO   `json:"taskStatusBreakdown"`
	TaskPriorityBreakdown PriorityBreakdownDTO `json:"taskPriorityBreakdown"`
	UnassignedTasks       int64                `json:"unassignedTasks"`
	RecentActivity        []ActivityDTO        `json:"recentActivity"`
}

func ToDashboardDTO(d services.Dashboard) DashboardDTO {
	return DashboardDTO{
		TotalUsers:    d.TotalUsers,
		TotalTasks:    d.TotalTasks,
		TotalComments: d.TotalComments,
		UserRoleBreakdown: RoleBreakdownDTO{
			Admins: d.Admins,
			Users:  d.Users,
		},
		TaskStatusBreakdown: StatusBreakdownDTO{
			Todo:       d.ByStatus[models.TaskStatusTodo],
			InProgress: d.ByStatus[models.TaskStatusInProgress],
			Done:       d.ByStatus[models.TaskStatusDone],
		},
		TaskPriorityBreakdown: PriorityBreakdownDTO{
			High:   d.ByPriority[models.TaskPriorityHigh],
			Medium: d.ByPriority[models.TaskPriorityMedium],
			Low:    d.ByPriority[models.TaskPriorityLow],
		},
		UnassignedTasks: d.Unassigned,
		RecentActivity: []ActivityDTO{
			{Type: "user_registered", Message: "New user registration", Count: d.UsersToday},
			{Type: "task_created", Message: "Tasks created today", Count: d.TasksToday},
			{Type: "comments_added", Message: "Comments added today", Count: d.CommentsToday},
		},
	}
}
