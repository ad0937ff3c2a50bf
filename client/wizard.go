package client

import (
	"context"
	"errors"
	"slices"

	"github.com/google/uuid"

	"github.com/myaicommunity/agenthub/models"
)

// Wizard step bounds
const (
	FirstStep = 1
	LastStep  = 3
)

var (
	ErrNotOnFinalStep      = errors.New("submit is only available on the final step")
	ErrAlreadySubmitting   = errors.New("a submission is already in flight")
	ErrToolIndexOutOfRange = errors.New("tool index out of range")
)

// Draft mirrors the project entity minus server-only fields, plus the
// transient file handle chosen for upload.
type Draft struct {
	Name                    string
	ProjectName             string
	ProjectDescription      string
	LinkedProfile           string
	VideoLink               string
	FlowFileLink            string
	DeployedLink            string
	InstructionDocumentLink string
	Categories              []string
	Tools                   []string
	Rating                  int
	File                    *FileAttachment
}

// Wizard is the 3-step create/edit form state machine. Step 1 holds the
// identity fields, step 2 links/image/categories/tools, step 3 the summary
// and rating. Transitions are clamped to [FirstStep, LastStep] and a
// submission can only start from the last step while none is in flight.
type Wizard struct {
	client *Client

	step       int
	draft      Draft
	editing    bool
	projectID  uuid.UUID
	submitting bool
}

func NewWizard(client *Client) *Wizard {
	return &Wizard{client: client, step: FirstStep}
}

// LoadForEdit seeds the draft from an existing project and switches the
// wizard to edit mode. The existing image stays server-side; the draft's
// file handle remains empty until a new one is chosen.
func (w *Wizard) LoadForEdit(ctx context.Context, id uuid.UUID) (models.Project, error) {
	project, err := w.client.GetProject(ctx, id)
	if err != nil {
		return models.Project{}, err
	}

	w.editing = true
	w.projectID = project.ID
	w.step = FirstStep
	w.draft = Draft{
		Name:                    project.Name,
		ProjectName:             project.ProjectName,
		ProjectDescription:      project.ProjectDescription,
		LinkedProfile:           project.LinkedProfile,
		VideoLink:               project.VideoLink,
		FlowFileLink:            project.FlowFileLink,
		DeployedLink:            project.DeployedLink,
		InstructionDocumentLink: project.InstructionDocumentLink,
		Categories:              slices.Clone([]string(project.Categories)),
		Tools:                   slices.Clone([]string(project.Tools)),
		Rating:                  project.Rating,
	}
	return project, nil
}

func (w *Wizard) Step() int {
	return w.step
}

func (w *Wizard) Editing() bool {
	return w.editing
}

func (w *Wizard) Submitting() bool {
	return w.submitting
}

// Draft returns the in-memory draft for field edits.
func (w *Wizard) Draft() *Draft {
	return &w.draft
}

func (w *Wizard) Next() {
	if w.step < LastStep {
		w.step++
	}
}

func (w *Wizard) Prev() {
	if w.step > FirstStep {
		w.step--
	}
}

// ToggleCategory flips membership of a category in the draft.
func (w *Wizard) ToggleCategory(category string) {
	if i := slices.Index(w.draft.Categories, category); i >= 0 {
		w.draft.Categories = slices.Delete(w.draft.Categories, i, i+1)
		return
	}
	w.draft.Categories = append(w.draft.Categories, category)
}

func (w *Wizard) AddTool(tool string) {
	if tool == "" {
		return
	}
	w.draft.Tools = append(w.draft.Tools, tool)
}

func (w *Wizard) RemoveTool(index int) error {
	if index < 0 || index >= len(w.draft.Tools) {
		return ErrToolIndexOutOfRange
	}
	w.draft.Tools = slices.Delete(w.draft.Tools, index, index+1)
	return nil
}

func (w *Wizard) SetFile(file *FileAttachment) {
	w.draft.File = file
}

// Submit sends the draft. On a successful create, the draft resets to an
// empty step-1 form; on a successful edit, the wizard state is left for the
// caller to navigate away from.
func (w *Wizard) Submit(ctx context.Context) (models.Project, error) {
	if w.step != LastStep {
		return models.Project{}, ErrNotOnFinalStep
	}
	if w.submitting {
		return models.Project{}, ErrAlreadySubmitting
	}

	w.submitting = true
	defer func() { w.submitting = false }()

	if w.editing {
		return w.client.UpdateProject(ctx, w.projectID, w.draft)
	}

	project, err := w.client.CreateProject(ctx, w.draft)
	if err != nil {
		return models.Project{}, err
	}

	w.draft = Draft{}
	w.step = FirstStep
	return project, nil
}
