// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

/*
console.go - Console Resource Models

Admins, users and letters as exposed by the remote admin API. Role and
permission names match the backend exactly; package session turns them
into an authorization model.
*/

package models

import "time"

// AdminRole is the role of a console operator.
type AdminRole string

const (
	RoleSuperAdmin AdminRole = "super_admin"
	RoleAdmin      AdminRole = "admin"
	RoleManager    AdminRole = "manager"
)

// Permission is a resource.action capability string.
type Permission string

const (
	PermUsersRead     Permission = "users.read"
	PermUsersWrite    Permission = "users.write"
	PermUsersDelete   Permission = "users.delete"
	PermLettersRead   Permission = "letters.read"
	PermLettersWrite  Permission = "letters.write"
	PermLettersDelete Permission = "letters.delete"
	PermAdminsRead    Permission = "admins.read"
	PermAdminsWrite   Permission = "admins.write"
	PermAdminsDelete  Permission = "admins.delete"
	PermDashboardRead Permission = "dashboard.read"
)

// AllPermissions lists every permission known to the console.
var AllPermissions = []Permission{
	PermUsersRead, PermUsersWrite, PermUsersDelete,
	PermLettersRead, PermLettersWrite, PermLettersDelete,
	PermAdminsRead, PermAdminsWrite, PermAdminsDelete,
	PermDashboardRead,
}

// RolePermissions is the built-in grant table. super_admin additionally
// bypasses every check.
var RolePermissions = map[AdminRole][]Permission{
	RoleSuperAdmin: AllPermissions,
	RoleAdmin: {
		PermUsersRead, PermUsersWrite,
		PermLettersRead, PermLettersWrite, PermLettersDelete,
		PermDashboardRead,
	},
	RoleManager: {PermUsersRead, PermLettersRead, PermDashboardRead},
}

// Admin is a console operator account.
type Admin struct {
	ID          string       `json:"_id"`
	Username    string       `json:"username"`
	Name        string       `json:"name"`
	Role        AdminRole    `json:"role"`
	Permissions []Permission `json:"permissions"`
	Department  string       `json:"department,omitempty"`
	Status      string       `json:"status"`
	LastLoginAt *time.Time   `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// User is an end-user account of the publishing platform.
type User struct {
	ID           string     `json:"_id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	Status       string     `json:"status"`
	BannedAt     *time.Time `json:"bannedAt,omitempty"`
	BannedReason string     `json:"bannedReason,omitempty"`
	LetterCount  int        `json:"letterCount,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// UserStats is the activity summary of GET admin/users/{id}/stats.
type UserStats struct {
	TotalLetters int        `json:"totalLetters"`
	TotalStories int        `json:"totalStories"`
	TotalViews   int        `json:"totalViews"`
	TotalLikes   int        `json:"totalLikes"`
	JoinedAt     time.Time  `json:"joinedAt"`
	LastActiveAt *time.Time `json:"lastActiveAt,omitempty"`
}

// UserDetail is a user with its activity summary, as returned by
// GET admin/users/{id}/detail.
type UserDetail struct {
	User
	Stats UserStats `json:"stats"`
}

// Letter is a published letter or story.
type Letter struct {
	ID         string `json:"_id"`
	Type       string `json:"type"`
	UserID     string `json:"userId,omitempty"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	AuthorName string `json:"authorName"`
	Category   string `json:"category"`
	Status     string `json:"status"`
	ViewCount  int    `json:"viewCount"`
	LikeCount  int    `json:"likeCount"`
	CreatedAt  string `json:"createdAt"`
	UpdatedAt  string `json:"updatedAt"`

	Physical *LetterPhysicalFlag `json:"physicalLetter,omitempty"`
}

// LetterPhysicalFlag is the backend-side physical summary embedded in a
// letter record.
type LetterPhysicalFlag struct {
	TotalRequests int    `json:"totalRequests"`
	CurrentStatus string `json:"currentStatus"`
	LastUpdatedAt string `json:"lastUpdatedAt,omitempty"`
	AdminNote     string `json:"adminNote,omitempty"`
}

// ListQuery holds the common list parameters of the admin API.
type ListQuery struct {
	Page   int
	Limit  int
	Search string
	Status string
	Sort   string
	Order  string
}

// RequestQuery holds the list parameters of GET admin/physical-requests.
type RequestQuery struct {
	ListQuery
	DateFrom string
	DateTo   string
	Region   string
}

// LetterQuery holds the list parameters of GET admin/letters.
type LetterQuery struct {
	ListQuery
	Type           string
	Category       string
	PhysicalStatus string
}

// AdminQuery holds the list parameters of GET admin/admins.
type AdminQuery struct {
	Page       int
	Limit      int
	Search     string
	Role       AdminRole
	Status     string
	Department string
}

// ConsoleDashboard is the console home page document of GET admin/dashboard.
type ConsoleDashboard struct {
	Users           UserCounts          `json:"users"`
	Letters         LetterCounts        `json:"letters"`
	PhysicalLetters PhysicalLetterStats `json:"physicalLetters"`
	Categories      []CategoryCount     `json:"categories"`
	RecentUsers     []User              `json:"recentUsers"`
	RecentLetters   []Letter            `json:"recentLetters"`
}

// UserCounts are the user totals of the console dashboard.
type UserCounts struct {
	Total     int `json:"total"`
	Today     int `json:"today"`
	ThisWeek  int `json:"thisWeek"`
	ThisMonth int `json:"thisMonth"`
	ByStatus  struct {
		Active  int `json:"active"`
		Banned  int `json:"banned"`
		Deleted int `json:"deleted"`
	} `json:"byStatus"`
}

// LetterCounts are the letter totals of the console dashboard.
type LetterCounts struct {
	Total    int `json:"total"`
	Stories  int `json:"stories"`
	Letters  int `json:"letters"`
	Today    int `json:"today"`
	ByStatus struct {
		Created   int `json:"created"`
		Published int `json:"published"`
		Hidden    int `json:"hidden"`
	} `json:"byStatus"`
}

// CategoryCount is the number of letters in one category.
type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}
