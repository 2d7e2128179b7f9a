package protocol

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/traindesk/assessment-engine/internal/answers"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func submitRequest(value *answers.Value) *SubmitRequest {
	courseID := "course-9"
	return &SubmitRequest{
		QuizID:     3,
		QuestionID: 12,
		UserID:     55,
		CourseID:   &courseID,
		Answer:     value,
	}
}

func TestClient_SubmitAnswer_Success(t *testing.T) {
	var gotPath string
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"submitted_answers": []uint{10, 12},
				"next_step":         map[string]int{"last": 0},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, 0, testLogger())
	data, err := client.SubmitAnswer(context.Background(), submitRequest(&answers.Value{Data: "my essay"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/attempts/3" {
		t.Errorf("expected POST /attempts/3, got %s", gotPath)
	}
	if gotBody["answer"] != "my essay" {
		t.Errorf("expected answer field, got %v", gotBody["answer"])
	}
	if gotBody["question"] != float64(12) || gotBody["user"] != float64(55) {
		t.Errorf("unexpected identity fields: %v", gotBody)
	}
	if gotBody["course_id"] != "course-9" {
		t.Errorf("expected course_id, got %v", gotBody["course_id"])
	}

	if !reflect.DeepEqual(data.SubmittedAnswers, []uint{10, 12}) {
		t.Errorf("unexpected submitted set: %v", data.SubmittedAnswers)
	}
	if data.NextStep.Last != 0 {
		t.Errorf("expected last=0, got %d", data.NextStep.Last)
	}
}

func TestClient_SubmitAnswer_LastStep(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"submitted_answers": []uint{1, 2, 3},
				"next_step":         map[string]int{"last": 1},
				"intended_url":      "/courses/7/next",
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, 0, testLogger())
	data, err := client.SubmitAnswer(context.Background(), submitRequest(&answers.Value{Data: "done"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data.NextStep.Last != 1 {
		t.Errorf("expected last=1, got %d", data.NextStep.Last)
	}
	if data.IntendedURL != "/courses/7/next" {
		t.Errorf("expected intended url, got %q", data.IntendedURL)
	}
}

func TestClient_SubmitAnswer_Rejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"message": "attempt is no longer open",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, 0, testLogger())
	_, err := client.SubmitAnswer(context.Background(), submitRequest(&answers.Value{Data: "x"}))

	var rejection *RejectionError
	if !errors.As(err, &rejection) {
		t.Fatalf("expected RejectionError, got %T: %v", err, err)
	}
	if rejection.Message != "attempt is no longer open" {
		t.Errorf("unexpected message: %q", rejection.Message)
	}
}

func TestClient_SubmitAnswer_StructuredValidation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"errors": map[string][]string{
				"answer": {"answer is required"},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, 0, testLogger())
	_, err := client.SubmitAnswer(context.Background(), submitRequest(&answers.Value{Data: ""}))

	var fields *FieldErrors
	if !errors.As(err, &fields) {
		t.Fatalf("expected FieldErrors, got %T: %v", err, err)
	}
	if fields.Status != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", fields.Status)
	}
	if fields.First() != "answer is required" {
		t.Errorf("unexpected first message: %q", fields.First())
	}
}

func TestClient_SubmitAnswer_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer server.Close()

	client := NewClient(server.URL, 0, testLogger())
	_, err := client.SubmitAnswer(context.Background(), submitRequest(&answers.Value{Data: "x"}))

	var transport *TransportError
	if !errors.As(err, &transport) {
		t.Fatalf("expected TransportError, got %T: %v", err, err)
	}
}

func TestClient_SubmitAnswer_Multipart(t *testing.T) {
	var gotContentType string
	var gotFileName string
	var gotFileContent []byte
	var gotQuestion string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("failed to parse multipart form: %v", err)
		}
		gotQuestion = r.FormValue("question")

		file, header, err := r.FormFile("answer")
		if err != nil {
			t.Errorf("missing answer file: %v", err)
		} else {
			defer file.Close()
			gotFileName = header.Filename
			gotFileContent, _ = io.ReadAll(file)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"submitted_answers": []uint{12},
				"next_step":         map[string]int{"last": 0},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, 0, testLogger())
	value := &answers.Value{
		Data:   "evidence.png",
		Upload: &answers.FileUpload{Name: "evidence.png", Content: []byte("png-bytes")},
	}
	if _, err := client.SubmitAnswer(context.Background(), submitRequest(value)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasPrefix(gotContentType, "multipart/form-data") {
		t.Errorf("expected multipart encoding, got %s", gotContentType)
	}
	if gotQuestion != "12" {
		t.Errorf("expected question form field, got %q", gotQuestion)
	}
	if gotFileName != "evidence.png" {
		t.Errorf("unexpected file name: %q", gotFileName)
	}
	if string(gotFileContent) != "png-bytes" {
		t.Errorf("unexpected file content: %q", gotFileContent)
	}
}

func TestInterpretFailure(t *testing.T) {
	t.Run("field map under message key", func(t *testing.T) {
		body := []byte(`{"message": {"answer": "is required"}}`)
		err := InterpretFailure(400, body)

		var fields *FieldErrors
		if !errors.As(err, &fields) {
			t.Fatalf("expected FieldErrors, got %T", err)
		}
		if fields.First() != "is required" {
			t.Errorf("unexpected first message: %q", fields.First())
		}
	})

	t.Run("plain message becomes rejection", func(t *testing.T) {
		body := []byte(`{"message": "quiz is closed"}`)
		err := InterpretFailure(400, body)

		var rejection *RejectionError
		if !errors.As(err, &rejection) {
			t.Fatalf("expected RejectionError, got %T", err)
		}
	})

	t.Run("5xx with message is transport", func(t *testing.T) {
		body := []byte(`{"message": "boom"}`)
		err := InterpretFailure(500, body)

		var transport *TransportError
		if !errors.As(err, &transport) {
			t.Fatalf("expected TransportError, got %T", err)
		}
	})

	t.Run("multi-field errors aggregate sorted", func(t *testing.T) {
		err := InterpretFailure(400, []byte(`{"errors": {"b": ["second"], "a": ["first"]}}`))

		var fields *FieldErrors
		if !errors.As(err, &fields) {
			t.Fatalf("expected FieldErrors, got %T", err)
		}
		if fields.Error() != "a: first\nb: second" {
			t.Errorf("unexpected aggregate: %q", fields.Error())
		}
	})
}
