package user

import (
	"errors"
	"strings"
	"time"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already in use")
)

type Project struct {
	Title string `json:"title" binding:"required"`
	Desc  string `json:"desc,omitempty"`
	Links string `json:"links,omitempty"`
}

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	Role         string    `json:"role"`
	Education    string    `json:"education,omitempty"`
	Skills       []string  `json:"skills"`
	Projects     []Project `json:"projects"`
	Work         []string  `json:"work"`
	Links        []string  `json:"links"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Profile holds the self-service fields shared by signup and update.
type Profile struct {
	Education *string
	Skills    []string
	Projects  []Project
	Work      []string
	Links     []string
}

type NewUser struct {
	Name         string
	Email        string
	PasswordHash string
	Role         string
	Profile
}

// Patch only carries fields a user may change on their own record. Nil
// means "leave as is"; sequences replace the stored value wholesale.
type Patch struct {
	Name      *string
	Email     *string
	Education *string
	Skills    *[]string
	Projects  *[]Project
	Work      *[]string
	Links     *[]string
}

func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.Education == nil &&
		p.Skills == nil && p.Projects == nil && p.Work == nil && p.Links == nil
}

// Apply returns u with the patch applied. Stores that cannot push the patch
// down into a single statement use it for read-modify-write.
func (p Patch) Apply(u User) User {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = NormalizeEmail(*p.Email)
	}
	if p.Education != nil {
		u.Education = *p.Education
	}
	if p.Skills != nil {
		u.Skills = cloneStrings(*p.Skills)
	}
	if p.Projects != nil {
		u.Projects = cloneProjects(*p.Projects)
	}
	if p.Work != nil {
		u.Work = cloneStrings(*p.Work)
	}
	if p.Links != nil {
		u.Links = cloneStrings(*p.Links)
	}
	return u
}

type SkillCount struct {
	Skill string `json:"skill"`
	Count int    `json:"count"`
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}

// Normalize makes nil sequences empty so they serialize as [] not null.
func (u User) Normalize() User {
	if u.Skills == nil {
		u.Skills = []string{}
	}
	if u.Projects == nil {
		u.Projects = []Project{}
	}
	if u.Work == nil {
		u.Work = []string{}
	}
	if u.Links == nil {
		u.Links = []string{}
	}
	return u
}

// Public strips the password hash. Every read path returns this.
func (u User) Public() User {
	u.PasswordHash = ""
	return u.Normalize()
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneProjects(in []Project) []Project {
	out := make([]Project, len(in))
	copy(out, in)
	return out
}

// Clone deep-copies the sequence fields.
func (u User) Clone() User {
	u.Skills = cloneStrings(u.Skills)
	u.Projects = cloneProjects(u.Projects)
	u.Work = cloneStrings(u.Work)
	u.Links = cloneStrings(u.Links)
	return u
}
