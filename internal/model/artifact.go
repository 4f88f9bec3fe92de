package model

import (
	"fmt"
	"time"
)

// Kind identifies the type of a regulatory document.
type Kind string

const (
	KindMedicalForm       Kind = "medical_form"
	KindPsychologicalForm Kind = "psychological_form"
	KindCredential        Kind = "credential"
	KindPsychometricFile  Kind = "psychometric_file"
)

// kindTable holds the archive entry name for each kind and whether it is
// produced locally (generated forms) or owned by the sibling documents service.
var kindTable = map[Kind]struct {
	display string
	remote  bool
}{
	KindMedicalForm:       {display: "Documento Medico"},
	KindPsychologicalForm: {display: "Documento psicologico"},
	KindCredential:        {display: "Credencial", remote: true},
	KindPsychometricFile:  {display: "Psicotecnico", remote: true},
}

// ParseKind validates a kind string coming from a request.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if _, ok := kindTable[k]; !ok {
		return "", fmt.Errorf("unknown document kind %q", s)
	}
	return k, nil
}

// DisplayName is the human name used for archive entries and downloads.
func (k Kind) DisplayName() string {
	if e, ok := kindTable[k]; ok {
		return e.display
	}
	return string(k)
}

// Remote reports whether documents of this kind live in a sibling service.
func (k Kind) Remote() bool {
	return kindTable[k].remote
}

// RemoteKinds lists sibling-owned kinds in archive order.
func RemoteKinds() []Kind {
	return []Kind{KindPsychometricFile, KindCredential}
}

// Artifact is a persisted generated or uploaded document. The payload lives in
// object storage under StoragePath; Payload is only populated when loaded.
type Artifact struct {
	ID          int64     `json:"id"`
	SubjectID   int64     `json:"subject_id"`
	ActorID     int64     `json:"actor_id"`
	Kind        Kind      `json:"kind"`
	ContentType string    `json:"content_type"`
	StoragePath string    `json:"-"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
	Payload     []byte    `json:"-"`
}

// FieldMap maps placeholder names to replacement values.
type FieldMap map[string]string

// DownloadLink is a time-limited URL to an artifact payload that needs no
// credentials.
type DownloadLink struct {
	ArtifactID int64     `json:"artifact_id"`
	URL        string    `json:"url"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// ContentTypePDF is the only content type accepted for stored artifacts.
const ContentTypePDF = "application/pdf"
