package panel

import (
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/rpggio/filetracker/internal/domain/project"
	"github.com/rpggio/filetracker/internal/message"
)

const (
	LabelLogin  = "Login with Google"
	LabelLogout = "Logout"
	LabelSave   = "Save Project"
	LabelUpdate = "Update Project"
	LabelDelete = "Delete"
)

// Button is a control that issues Request when clicked.
type Button struct {
	Label   string
	Request message.Request
}

// Type is the request type tag the button sends.
func (b Button) Type() string {
	return b.Request.Type()
}

// ProjectID is the project the button targets, if any.
func (b Button) ProjectID() string {
	switch r := b.Request.(type) {
	case message.UpdateProject:
		return r.ProjectID
	case message.DeleteProject:
		return r.ProjectID
	}
	return ""
}

// ProjectView is one entry of the project list.
type ProjectView struct {
	ID      string
	Name    string
	Current bool
	Files   []string
	Delete  Button
}

// View is everything the panel shows.
type View struct {
	Loading     bool
	LoggedIn    bool
	Login       Button
	Logout      Button
	DisplayName string

	// Workspace is empty when no folder is open; Action is nil then.
	Workspace string
	Action    *Button
	Projects  []ProjectView
}

// View derives what the panel shows from the state.
func (s *State) View() View {
	v := View{
		Loading: s.loading,
		Login:   Button{Label: LabelLogin, Request: message.AuthenticateUser{}},
		Logout:  Button{Label: LabelLogout, Request: message.Logout{}},
	}
	if s.loading || s.user == nil {
		return v
	}

	v.LoggedIn = true
	v.DisplayName = s.user.DisplayName
	if s.workspace != nil {
		v.Workspace = *s.workspace
	}

	if v.Workspace != "" {
		if match, ok := project.FindByName(s.projects, v.Workspace); ok {
			v.Action = &Button{Label: LabelUpdate, Request: message.UpdateProject{ProjectID: match.ID}}
		} else {
			v.Action = &Button{Label: LabelSave, Request: message.SaveProject{}}
		}
	}

	for _, p := range sortProjects(s.projects, v.Workspace) {
		pv := ProjectView{
			ID:      p.ID,
			Name:    p.Name,
			Current: v.Workspace != "" && p.Name == v.Workspace,
			Files:   make([]string, 0, len(p.Files)),
			Delete:  Button{Label: LabelDelete, Request: message.DeleteProject{ProjectID: p.ID}},
		}
		for _, f := range p.Files {
			pv.Files = append(pv.Files, f.Name)
		}
		v.Projects = append(v.Projects, pv)
	}
	return v
}

// sortProjects pins projects named after the workspace first, then orders
// by locale-aware name comparison.
func sortProjects(projects []project.Project, workspace string) []project.Project {
	sorted := slices.Clone(projects)
	coll := collate.New(language.Und)
	slices.SortStableFunc(sorted, func(a, b project.Project) int {
		aCur := workspace != "" && a.Name == workspace
		bCur := workspace != "" && b.Name == workspace
		switch {
		case aCur && !bCur:
			return -1
		case bCur && !aCur:
			return 1
		}
		return coll.CompareString(a.Name, b.Name)
	})
	return sorted
}
