package rest_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jarcoal/httpmock"
	kerr "github.com/opst/labelkit/cmd/labelkit/errors"
	"github.com/opst/labelkit/cmd/labelkit/rest"
	"github.com/opst/labelkit/pkg/api/types/classification"
	"github.com/opst/labelkit/pkg/utils/pointer"
	"github.com/opst/labelkit/pkg/utils/try"
)

const datapointJson = `{"id": 10, "file": "a.png", "file_url": "/media/a.png", "dataset": 1, "label": 3, "predictions": []}`

func TestCreateDatapoint_Multipart(t *testing.T) {
	type When struct {
		upload rest.Upload
		label  *int
	}
	type Then struct {
		filename    string
		contentType string
		content     string
		label       string
		chunked     bool
	}

	theory := func(when When, then Then) func(*testing.T) {
		return func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost || r.URL.Path != "/api/data/datapoints/classification/" {
					t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
				}
				if auth := r.Header.Get("Authorization"); auth != "Token s3cr3t" {
					t.Errorf("Authorization: %s", auth)
				}

				body, err := io.ReadAll(r.Body)
				if err != nil {
					t.Errorf("failed to read body: %v", err)
					w.WriteHeader(http.StatusBadRequest)
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))
				if then.chunked {
					if r.ContentLength != -1 {
						t.Errorf("ContentLength: actual = %d, expected unknown", r.ContentLength)
					}
				} else {
					if r.ContentLength != int64(len(body)) {
						t.Errorf("ContentLength: actual = %d, expected = %d", r.ContentLength, len(body))
					}
					if len(r.TransferEncoding) != 0 {
						t.Errorf("TransferEncoding: %v", r.TransferEncoding)
					}
				}

				if err := r.ParseMultipartForm(1 << 20); err != nil {
					t.Errorf("not a multipart form: %v", err)
					w.WriteHeader(http.StatusBadRequest)
					return
				}
				if ds := r.FormValue("dataset"); ds != "1" {
					t.Errorf("dataset: %s", ds)
				}
				if l := r.FormValue("label"); l != then.label {
					t.Errorf("label: actual = %q, expected = %q", l, then.label)
				}

				f, h, err := r.FormFile("file")
				if err != nil {
					t.Errorf("no file part: %v", err)
					w.WriteHeader(http.StatusBadRequest)
					return
				}
				defer f.Close()
				if h.Filename != then.filename {
					t.Errorf("filename: actual = %s, expected = %s", h.Filename, then.filename)
				}
				if ct := h.Header.Get("Content-Type"); ct != then.contentType {
					t.Errorf("content type: actual = %s, expected = %s", ct, then.contentType)
				}
				content, _ := io.ReadAll(f)
				if string(content) != then.content {
					t.Errorf("content: actual = %q, expected = %q", content, then.content)
				}

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusCreated)
				w.Write([]byte(datapointJson))
			}))
			defer server.Close()

			testee := newClient(t, server.URL+"/api")
			dp, err := testee.CreateDatapoint(context.Background(), rest.DatapointCreate{
				Dataset: 1, Label: when.label, File: &when.upload,
			})
			if err != nil {
				t.Fatal(err)
			}
			if dp.Id != 10 || dp.Label.Id != 3 || !dp.Label.IsReference() {
				t.Errorf("unexpected datapoint: %+v", dp)
			}
		}
	}

	t.Run("png without label", theory(
		When{upload: rest.BytesUpload("dir/cat.png", []byte("PNG CONTENT"))},
		Then{filename: "cat.png", contentType: "image/png", content: "PNG CONTENT"},
	))

	t.Run("with label", theory(
		When{upload: rest.BytesUpload("dog.jpg", []byte("JPEG")), label: pointer.Ref(3)},
		Then{filename: "dog.jpg", contentType: "image/jpeg", content: "JPEG", label: "3"},
	))

	t.Run("explicit content type and unknown extension", theory(
		When{upload: rest.Upload{
			Name: "blob", ContentType: "image/webp",
			Open: rest.BytesUpload("", []byte("WEBP")).Open,
		}},
		Then{filename: "blob", contentType: "image/webp", content: "WEBP", chunked: true},
	))

	t.Run("unknown size is sent chunked", theory(
		When{upload: rest.Upload{
			Name: "cat.png", Size: -1,
			Open: rest.BytesUpload("", []byte("PNG")).Open,
		}},
		Then{filename: "cat.png", contentType: "image/png", content: "PNG", chunked: true},
	))

	t.Run("unknown type falls back to octet-stream", theory(
		When{upload: rest.BytesUpload("blob", []byte("???"))},
		Then{filename: "blob", contentType: "application/octet-stream", content: "???"},
	))
}

func TestCreateDatapoint_Reference(t *testing.T) {
	server, _ := serve(t, Request{
		Method: http.MethodPost, Path: "/api/data/datapoints/classification/",
		Body: `{"file": "existing.png", "dataset": 1, "label": 3}`,
	}, http.StatusCreated, datapointJson)
	testee := newClient(t, server.URL+"/api")

	try.To(testee.CreateDatapoint(context.Background(), rest.DatapointCreate{
		Dataset: 1, Label: pointer.Ref(3), FileRef: "existing.png",
	})).OrFatal(t)
}

func TestCreateDatapoint_Invalid(t *testing.T) {
	upload := rest.BytesUpload("a.png", []byte("x"))

	theory := func(payload rest.DatapointCreate, field string) func(*testing.T) {
		return func(t *testing.T) {
			testee, mt := newMockedClient(t)
			_, err := testee.CreateDatapoint(context.Background(), payload)

			verr := &kerr.ValidationError{}
			if !errors.As(err, &verr) {
				t.Fatalf("unexpected error: %v", err)
			}
			if _, ok := verr.FieldErrors[field]; !ok {
				t.Errorf("field %s is not reported: %+v", field, verr.FieldErrors)
			}
			if n := mt.GetTotalCallCount(); n != 0 {
				t.Errorf("request is sent %d times", n)
			}
		}
	}

	t.Run("both file and reference", theory(rest.DatapointCreate{Dataset: 1, File: &upload, FileRef: "a.png"}, "file"))
	t.Run("neither file nor reference", theory(rest.DatapointCreate{Dataset: 1}, "file"))
	t.Run("no dataset", theory(rest.DatapointCreate{FileRef: "a.png"}, "dataset"))
}

func TestCreateDatapoint_EarlyRejection(t *testing.T) {
	t.Run("when server rejects without reading body, upload goroutine ends", func(t *testing.T) {
		testee, mt := newMockedClient(t)
		mt.RegisterResponder(
			http.MethodPost, mockRoot+"/data/datapoints/classification/",
			httpmock.NewStringResponder(http.StatusRequestEntityTooLarge, "too large"),
		)

		big := make([]byte, 4<<20)
		_, err := testee.CreateDatapoint(context.Background(), rest.DatapointCreate{
			Dataset: 1, File: pointer.Ref(rest.BytesUpload("big.png", big)),
		})
		herr := &kerr.HttpError{}
		if !errors.As(err, &herr) || herr.Status != http.StatusRequestEntityTooLarge {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("when file cannot be opened, nothing is sent", func(t *testing.T) {
		testee, mt := newMockedClient(t)
		expectedErr := errors.New("fake open error")

		_, err := testee.CreateDatapoint(context.Background(), rest.DatapointCreate{
			Dataset: 1,
			File: &rest.Upload{
				Name: "a.png",
				Open: func() (io.ReadCloser, error) { return nil, expectedErr },
			},
		})
		if !errors.Is(err, expectedErr) {
			t.Errorf("unexpected error: %v", err)
		}
		if n := mt.GetTotalCallCount(); n != 0 {
			t.Errorf("request is sent %d times", n)
		}
	})
}

func TestPatchDatapoint(t *testing.T) {
	t.Run("by class index", func(t *testing.T) {
		server, _ := serve(t, Request{
			Method: http.MethodPatch, Path: "/api/data/datapoints/classification/10/",
			Body: `{"class_index": 1}`,
		}, http.StatusOK, datapointJson)
		testee := newClient(t, server.URL+"/api")

		try.To(testee.PatchDatapoint(context.Background(), 10, classification.DatapointPatch{
			ClassIndex: pointer.Ref(1),
		})).OrFatal(t)
	})

	t.Run("label and class index together are rejected", func(t *testing.T) {
		testee, mt := newMockedClient(t)
		_, err := testee.PatchDatapoint(context.Background(), 10, classification.DatapointPatch{
			Label: pointer.Ref(3), ClassIndex: pointer.Ref(1),
		})
		if !errors.Is(err, kerr.ErrValidation) {
			t.Errorf("unexpected error: %v", err)
		}
		if n := mt.GetTotalCallCount(); n != 0 {
			t.Errorf("request is sent %d times", n)
		}
	})
}

func TestListDatapoints(t *testing.T) {
	theory := func(datasetId int, query string) func(*testing.T) {
		return func(t *testing.T) {
			server, _ := serve(t, Request{
				Method: http.MethodGet, Path: "/api/data/datapoints/classification/", Query: query,
			}, http.StatusOK, "["+datapointJson+"]")
			testee := newClient(t, server.URL+"/api")

			dps := try.To(testee.ListDatapoints(context.Background(), datasetId)).OrFatal(t)
			if len(dps) != 1 || dps[0].Id != 10 {
				t.Errorf("unexpected: %+v", dps)
			}
		}
	}

	t.Run("all", theory(0, ""))
	t.Run("filtered by dataset", theory(1, "dataset=1"))
}

func TestGetUpdateDeleteDatapoint(t *testing.T) {
	t.Run("get", func(t *testing.T) {
		server, _ := serve(t, Request{Method: http.MethodGet, Path: "/api/data/datapoints/classification/10/"}, http.StatusOK, datapointJson)
		testee := newClient(t, server.URL+"/api")
		dp := try.To(testee.GetDatapoint(context.Background(), 10)).OrFatal(t)
		if dp.Id != 10 {
			t.Errorf("unexpected: %+v", dp)
		}
	})

	t.Run("update", func(t *testing.T) {
		server, _ := serve(t, Request{
			Method: http.MethodPut, Path: "/api/data/datapoints/classification/10/",
			Body: `{"file": "a.png", "dataset": 1, "label": null}`,
		}, http.StatusOK, datapointJson)
		testee := newClient(t, server.URL+"/api")
		try.To(testee.UpdateDatapoint(context.Background(), 10, classification.DatapointFields{
			File: "a.png", Dataset: 1,
		})).OrFatal(t)
	})

	t.Run("delete", func(t *testing.T) {
		server, called := serve(t, Request{Method: http.MethodDelete, Path: "/api/data/datapoints/classification/10/"}, http.StatusNoContent, "")
		testee := newClient(t, server.URL+"/api")
		if err := testee.DeleteDatapoint(context.Background(), 10); err != nil {
			t.Fatal(err)
		}
		if *called != 1 {
			t.Errorf("server is called %d times", *called)
		}
	})
}
