package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/myaicommunity/agenthub/models"
)

// projectBackend serves the project endpoints, echoing submitted drafts
// back as stored projects and recording what the client sent.
type projectBackend struct {
	project      models.Project
	lastForm     map[string]string
	lastFile     string
	lastFileBody string
	lastMethod   string
}

func (f *projectBackend) handler(t *testing.T) http.Handler {
	writeJSON := func(w http.ResponseWriter, status int, payload any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(payload)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": f.project})
		case r.Method == http.MethodPost || r.Method == http.MethodPut:
			require.NoError(t, r.ParseMultipartForm(32<<20))
			f.lastMethod = r.Method
			f.lastForm = map[string]string{}
			for name, values := range r.MultipartForm.Value {
				f.lastForm[name] = values[0]
			}
			if file, header, err := r.FormFile("backgroundImage"); err == nil {
				f.lastFile = header.Filename
				content, _ := io.ReadAll(file)
				f.lastFileBody = string(content)
				file.Close()
			}

			stored := f.project
			stored.ProjectName = f.lastForm["projectName"]
			status := http.StatusOK
			if r.Method == http.MethodPost {
				stored.ID = uuid.New()
				status = http.StatusCreated
			}
			writeJSON(w, status, map[string]any{"success": true, "data": stored})
		default:
			writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "Project not found"})
		}
	})
}

func newWizardEnv(t *testing.T) (*Wizard, *projectBackend) {
	t.Helper()

	backend := &projectBackend{
		project: models.Project{
			ID:                 uuid.New(),
			Name:               "Mahesh",
			ProjectName:        "Existing Bot",
			ProjectDescription: "desc",
			LinkedProfile:      "https://example.com/profile",
			Categories:         datatypes.NewJSONSlice([]string{"Automation"}),
			Tools:              datatypes.NewJSONSlice([]string{"Python"}),
			Rating:             3,
		},
	}
	server := httptest.NewServer(backend.handler(t))
	t.Cleanup(server.Close)

	return NewWizard(New(server.URL, server.Client(), nil)), backend
}

func TestWizardNavigation(t *testing.T) {
	wizard, _ := newWizardEnv(t)
	require.Equal(t, FirstStep, wizard.Step())

	// Prev on the first step stays put.
	wizard.Prev()
	assert.Equal(t, FirstStep, wizard.Step())

	wizard.Next()
	assert.Equal(t, 2, wizard.Step())
	wizard.Next()
	assert.Equal(t, LastStep, wizard.Step())

	// Next on the last step stays put.
	wizard.Next()
	assert.Equal(t, LastStep, wizard.Step())

	wizard.Prev()
	assert.Equal(t, 2, wizard.Step())
}

func TestWizardSubmitOnlyOnFinalStep(t *testing.T) {
	wizard, _ := newWizardEnv(t)

	_, err := wizard.Submit(context.Background())
	assert.ErrorIs(t, err, ErrNotOnFinalStep)

	wizard.Next()
	_, err = wizard.Submit(context.Background())
	assert.ErrorIs(t, err, ErrNotOnFinalStep)
}

func TestWizardToggleCategory(t *testing.T) {
	wizard, _ := newWizardEnv(t)

	wizard.ToggleCategory("Automation")
	assert.Equal(t, []string{"Automation"}, wizard.Draft().Categories)

	wizard.ToggleCategory("Design")
	assert.Equal(t, []string{"Automation", "Design"}, wizard.Draft().Categories)

	// Toggling again removes it.
	wizard.ToggleCategory("Automation")
	assert.Equal(t, []string{"Design"}, wizard.Draft().Categories)
}

func TestWizardTools(t *testing.T) {
	wizard, _ := newWizardEnv(t)

	wizard.AddTool("Python")
	wizard.AddTool("")
	wizard.AddTool("Redis")
	assert.Equal(t, []string{"Python", "Redis"}, wizard.Draft().Tools)

	assert.ErrorIs(t, wizard.RemoveTool(5), ErrToolIndexOutOfRange)
	assert.ErrorIs(t, wizard.RemoveTool(-1), ErrToolIndexOutOfRange)

	require.NoError(t, wizard.RemoveTool(0))
	assert.Equal(t, []string{"Redis"}, wizard.Draft().Tools)
}

func TestWizardCreateSubmit(t *testing.T) {
	wizard, backend := newWizardEnv(t)

	draft := wizard.Draft()
	draft.Name = "Mahesh"
	draft.ProjectName = "New Bot"
	draft.ProjectDescription = "does things"
	draft.Rating = 4
	wizard.ToggleCategory("Automation")
	wizard.AddTool("Python")
	wizard.SetFile(&FileAttachment{
		Name:     "cover.png",
		MimeType: "image/png",
		Reader:   strings.NewReader("png-bytes"),
	})

	wizard.Next()
	wizard.Next()
	created, err := wizard.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "New Bot", created.ProjectName)
	assert.Equal(t, http.MethodPost, backend.lastMethod)

	// The draft went over the wire as multipart form fields.
	assert.Equal(t, "Mahesh", backend.lastForm["name"])
	assert.Equal(t, "does things", backend.lastForm["projectDescription"])
	assert.Equal(t, "4", backend.lastForm["rating"])
	assert.JSONEq(t, `["Automation"]`, backend.lastForm["categories"])
	assert.JSONEq(t, `["Python"]`, backend.lastForm["tools"])
	assert.Equal(t, "cover.png", backend.lastFile)
	assert.Equal(t, "png-bytes", backend.lastFileBody)

	// A successful create resets the form.
	assert.Equal(t, FirstStep, wizard.Step())
	assert.Equal(t, Draft{}, *wizard.Draft())
}

func TestWizardEditSubmit(t *testing.T) {
	wizard, backend := newWizardEnv(t)

	project, err := wizard.LoadForEdit(context.Background(), backend.project.ID)
	require.NoError(t, err)
	assert.True(t, wizard.Editing())
	assert.Equal(t, FirstStep, wizard.Step())

	// The draft is seeded from the stored project, without the image.
	draft := wizard.Draft()
	assert.Equal(t, project.ProjectName, draft.ProjectName)
	assert.Equal(t, []string{"Automation"}, draft.Categories)
	assert.Equal(t, []string{"Python"}, draft.Tools)
	assert.Nil(t, draft.File)

	draft.ProjectName = "Renamed Bot"
	wizard.Next()
	wizard.Next()
	updated, err := wizard.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, backend.lastMethod)
	assert.Equal(t, "Renamed Bot", updated.ProjectName)
	assert.Empty(t, backend.lastFile)

	// Editing does not reset the draft; the caller decides what follows.
	assert.Equal(t, "Renamed Bot", wizard.Draft().ProjectName)
}
