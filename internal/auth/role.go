package auth

import "certdocs/internal/model"

// Role is the user's position in the licensing workflow. Values match the
// "rol" claim issued by the users service.
type Role int

const (
	RoleAdministrator    Role = 1
	RoleSecretary        Role = 2
	RoleMedic            Role = 3
	RolePsychologist     Role = 4
	RolePsychotechnician Role = 5
	RoleDocumenter       Role = 6
)

// Capability is an operation guarded at the HTTP boundary.
type Capability string

const (
	CapGenerateForms  Capability = "generate_forms"
	CapStamp          Capability = "stamp"
	CapUpload         Capability = "upload"
	CapRead           Capability = "read"
	CapDelete         Capability = "delete"
	CapDownloadBundle Capability = "download_bundle"
)

type roleEntry struct {
	name  string
	caps  []Capability
	forms []model.Kind
}

var roleTable = map[Role]roleEntry{
	RoleAdministrator: {
		name:  "administrator",
		caps:  []Capability{CapGenerateForms, CapStamp, CapUpload, CapRead, CapDelete, CapDownloadBundle},
		forms: []model.Kind{model.KindMedicalForm, model.KindPsychologicalForm},
	},
	RoleSecretary: {
		name: "secretary",
		caps: []Capability{CapUpload, CapRead, CapDelete, CapDownloadBundle},
	},
	RoleMedic: {
		name:  "medic",
		caps:  []Capability{CapGenerateForms, CapStamp, CapRead},
		forms: []model.Kind{model.KindMedicalForm},
	},
	RolePsychologist: {
		name:  "psychologist",
		caps:  []Capability{CapGenerateForms, CapStamp, CapRead},
		forms: []model.Kind{model.KindPsychologicalForm},
	},
	RolePsychotechnician: {
		name: "psychotechnician",
		caps: []Capability{CapStamp, CapRead},
	},
	RoleDocumenter: {
		name: "documenter",
		caps: []Capability{CapRead, CapDownloadBundle},
	},
}

func (r Role) Valid() bool {
	_, ok := roleTable[r]
	return ok
}

func (r Role) String() string {
	if e, ok := roleTable[r]; ok {
		return e.name
	}
	return "unknown"
}

// Can reports whether the role holds capability c.
func (r Role) Can(c Capability) bool {
	for _, have := range roleTable[r].caps {
		if have == c {
			return true
		}
	}
	return false
}

// CanAuthor reports whether the role may generate forms of kind k.
func (r Role) CanAuthor(k model.Kind) bool {
	for _, f := range roleTable[r].forms {
		if f == k {
			return true
		}
	}
	return false
}
