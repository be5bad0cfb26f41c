package api

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/fridgechef/backend/internal/mocks"
	"github.com/fridgechef/backend/internal/model"
	"github.com/fridgechef/backend/internal/service"
)

// setupRouter wires a fresh workflow with mocked collaborators into a
// test router.
func setupRouter(t *testing.T) (*gin.Engine, *service.Workflow, *mocks.MockGateway) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gateway := &mocks.MockGateway{}
	workflow := service.NewWorkflow(gateway, mocks.NewMockStore())

	router := gin.New()
	v1 := router.Group("/api/v1")
	NewWorkflowHandler(workflow).RegisterRoutes(v1)
	NewRecipeHandler(workflow).RegisterRoutes(v1)
	NewHistoryHandler(workflow).RegisterRoutes(v1)
	return router, workflow, gateway
}

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

// seedRecipe drives the workflow to a generated recipe and returns its id.
func seedRecipe(t *testing.T, workflow *service.Workflow) string {
	t.Helper()
	ctx := context.Background()

	snap, err := workflow.SelectImage(ctx, tinyPNG(t))
	require.NoError(t, err)
	require.Equal(t, model.StatusSelecting, snap.Status)

	snap, err = workflow.Confirm(ctx, []string{"egg", "tomato"})
	require.NoError(t, err)
	require.Equal(t, model.StatusSuccess, snap.Status)
	require.NotEmpty(t, snap.Recipes)
	return snap.Recipes[0].ID
}

// performJSON issues a request with an optional JSON body.
func performJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// performUpload issues a multipart photo upload.
func performUpload(t *testing.T, router *gin.Engine, field string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, "fridge.png")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/workflow/image", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// decodeSnapshot parses a snapshot response body.
func decodeSnapshot(t *testing.T, rec *httptest.ResponseRecorder) service.Snapshot {
	t.Helper()
	var snap service.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	return snap
}
