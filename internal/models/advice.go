package models

import "time"

// MediaType is the kind of media attached to an advice
type MediaType string

const (
	MediaTypeNone  MediaType = ""
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
)

// UnlockType controls how a child gets to read an advice
type UnlockType string

const (
	UnlockByAge      UnlockType = "age"
	UnlockByPassword UnlockType = "password"
)

// Advice is a message a father leaves for his children
type Advice struct {
	ID         string
	AuthorID   string
	Category   string
	TargetAge  int
	Content    string
	MediaURL   string
	MediaType  MediaType
	UnlockType UnlockType
	// PasswordHash is only set when UnlockType is UnlockByPassword
	PasswordHash string
	IsRead       bool
	IsFavorite   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// VisibleTo applies the father/child ownership rule: a father sees what he
// wrote, a child sees what their father wrote.
func (a *Advice) VisibleTo(u *User) bool {
	switch u.Role {
	case RoleFather:
		return a.AuthorID == u.ID
	case RoleChild:
		return u.FatherID != "" && a.AuthorID == u.FatherID
	}
	return false
}

// AdviceFilter holds the optional equality filters for listing advices
type AdviceFilter struct {
	Category  string
	TargetAge *int
}

// FatherStats summarizes a father's own advices
type FatherStats struct {
	Total  int
	Read   int
	Unread int
}

// ChildStats summarizes the advices available to a child
type ChildStats struct {
	Available  int
	Future     int
	Favorite   int
	CurrentAge int
}

// MediaUpload describes an uploaded media object
type MediaUpload struct {
	URL  string
	Type MediaType
}
