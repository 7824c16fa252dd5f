package datapoint_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	kerr "github.com/opst/labelkit/cmd/labelkit/errors"
	"github.com/opst/labelkit/cmd/labelkit/rest"
	"github.com/opst/labelkit/cmd/labelkit/rest/mock"
	"github.com/opst/labelkit/cmd/labelkit/store"
	"github.com/opst/labelkit/cmd/labelkit/subcommands/datapoint"
	"github.com/opst/labelkit/cmd/labelkit/subcommands/internal/commandline"
	"github.com/opst/labelkit/cmd/labelkit/subcommands/logger"
	testctx "github.com/opst/labelkit/internal/testutils/context"
	"github.com/opst/labelkit/pkg/api/types/classification"
	"github.com/opst/labelkit/pkg/cmp"
	"github.com/opst/labelkit/pkg/utils/pointer"
	"github.com/youta-t/flarc"
)

func animals() *classification.Dataset {
	cat := &classification.Label{Id: 3, ClassIndex: 0, ClassLabel: "cat", Dataset: 1}
	dog := &classification.Label{Id: 4, ClassIndex: 1, ClassLabel: "dog", Dataset: 1}
	return &classification.Dataset{
		Id: 1, Name: "animals",
		Labels: []*classification.Label{cat, dog},
		Datapoints: []*classification.Datapoint{
			{Id: 10, File: "a.png", Dataset: 1, Label: cat, Predictions: []*classification.Prediction{}},
		},
	}
}

// newClient returns a client serving animals, which creates datapoints from uploads
// except for files named in failing.
func newClient(t *testing.T, failing ...string) *mock.MockClient {
	client := mock.New(t)
	client.Impl.GetDataset = func(ctx context.Context, id int) (*classification.Dataset, error) {
		if id != 1 {
			return nil, kerr.Missing("dataset", id)
		}
		return animals(), nil
	}

	nextId := 100
	client.Impl.CreateDatapoint = func(ctx context.Context, payload rest.DatapointCreate) (*classification.Datapoint, error) {
		rc, err := payload.File.Open()
		if err != nil {
			return nil, err
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
		if string(content) != "content of "+payload.File.Name {
			t.Errorf("unexpected content of %s: %s", payload.File.Name, content)
		}

		for _, f := range failing {
			if f == payload.File.Name {
				return nil, &kerr.HttpError{Status: 500}
			}
		}
		nextId += 1
		dp := &classification.Datapoint{
			Id: nextId, File: payload.File.Name, Dataset: payload.Dataset,
			Predictions: []*classification.Prediction{},
		}
		if payload.Label != nil {
			dp.Label = classification.RefLabel(*payload.Label)
		}
		return dp, nil
	}
	return client
}

func writeFiles(t *testing.T, dir string, names ...string) []string {
	t.Helper()
	paths := make([]string, len(names))
	for nth, name := range names {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte("content of "+name), 0o600); err != nil {
			t.Fatal(err)
		}
		paths[nth] = p
	}
	return paths
}

func cl[T any](flags T, args map[string][]string) (commandline.MockCommandline[T], *strings.Builder) {
	stdout := new(strings.Builder)
	return commandline.MockCommandline[T]{
		Fullname_: "labelkit datapoint",
		Stdout_:   stdout,
		Stderr_:   io.Discard,
		Flags_:    flags,
		Args_:     args,
	}, stdout
}

func TestUpload(t *testing.T) {
	type When struct {
		files   []string
		label   int
		failing []string
	}
	type Then struct {
		uploaded []string
		printed  []string
		err      error
	}

	theory := func(when When, then Then) func(*testing.T) {
		return func(t *testing.T) {
			client := newClient(t, when.failing...)
			paths := writeFiles(t, t.TempDir(), when.files...)

			c, stdout := cl(
				datapoint.UploadFlag{Label: when.label},
				map[string][]string{datapoint.ARG_DATASET_ID: {"1"}, datapoint.ARG_FILE: paths},
			)
			err := datapoint.UploadTask()(context.Background(), logger.Null(), client, c, nil)
			if then.err == nil && err != nil {
				t.Fatal(err)
			}
			if then.err != nil && !errors.Is(err, then.err) {
				t.Errorf("expected %v, but got %v", then.err, err)
			}

			uploaded := make([]string, len(client.Calls.CreateDatapoint))
			for nth, p := range client.Calls.CreateDatapoint {
				uploaded[nth] = p.File.Name
				if p.Dataset != 1 {
					t.Errorf("uploaded to dataset %d", p.Dataset)
				}
				var want *int
				if when.label != 0 {
					want = pointer.Ref(when.label)
				}
				if !pointer.Equal(p.Label, want) {
					t.Errorf("label: expected %v, but got %v", want, p.Label)
				}
			}
			if !cmp.SliceEq(uploaded, then.uploaded) {
				t.Errorf("uploaded: expected %v, but got %v", then.uploaded, uploaded)
			}

			if then.printed == nil {
				return
			}
			var printed []classification.Datapoint
			if err := json.Unmarshal([]byte(stdout.String()), &printed); err != nil {
				t.Fatalf("output is not JSON: %s", stdout.String())
			}
			names := make([]string, len(printed))
			for nth := range printed {
				names[nth] = printed[nth].File
			}
			if !cmp.SliceEq(names, then.printed) {
				t.Errorf("printed: expected %v, but got %v", then.printed, names)
			}
		}
	}

	t.Run("it uploads files in order", theory(
		When{files: []string{"b.png", "c.png"}},
		Then{
			uploaded: []string{"b.png", "c.png"},
			printed:  []string{"b.png", "c.png"},
		},
	))

	t.Run("it uploads files with the label", theory(
		When{files: []string{"b.png"}, label: 4},
		Then{
			uploaded: []string{"b.png"},
			printed:  []string{"b.png"},
		},
	))

	t.Run("failed upload does not stop others, and fails the command", theory(
		When{files: []string{"b.png", "c.png", "d.png"}, failing: []string{"c.png"}},
		Then{
			uploaded: []string{"b.png", "c.png", "d.png"},
			printed:  []string{"b.png", "d.png"},
			err:      kerr.ErrHttp,
		},
	))

	t.Run("label of other datasets is not found", theory(
		When{files: []string{"b.png"}, label: 99},
		Then{uploaded: []string{}, err: kerr.ErrNotFound},
	))

	t.Run("missing file is a usage error", func(t *testing.T) {
		client := mock.New(t)
		c, _ := cl(
			datapoint.UploadFlag{},
			map[string][]string{
				datapoint.ARG_DATASET_ID: {"1"},
				datapoint.ARG_FILE:       {filepath.Join(t.TempDir(), "missing.png")},
			},
		)
		err := datapoint.UploadTask()(context.Background(), logger.Null(), client, c, nil)
		if !errors.Is(err, flarc.ErrUsage) {
			t.Errorf("expected ErrUsage, but got %v", err)
		}
		if len(client.Calls.GetDataset) != 0 {
			t.Errorf("server is requested")
		}
	})

	t.Run("failures are reported as BatchError", func(t *testing.T) {
		client := newClient(t, "b.png")
		paths := writeFiles(t, t.TempDir(), "b.png")
		c, _ := cl(
			datapoint.UploadFlag{},
			map[string][]string{datapoint.ARG_DATASET_ID: {"1"}, datapoint.ARG_FILE: paths},
		)
		err := datapoint.UploadTask()(context.Background(), logger.Null(), client, c, nil)

		berr := new(store.BatchError)
		if !errors.As(err, &berr) {
			t.Fatalf("expected BatchError, but got %v", err)
		}
		if berr.Total != 1 || len(berr.Failures) != 1 || berr.Failures[0].Name != "b.png" {
			t.Errorf("unexpected error: %+v", berr)
		}
	})
}

func TestWatch(t *testing.T) {
	client := newClient(t)
	dir := t.TempDir()

	called := make(chan string, 16)
	create := client.Impl.CreateDatapoint
	client.Impl.CreateDatapoint = func(ctx context.Context, payload rest.DatapointCreate) (*classification.Datapoint, error) {
		dp, err := create(ctx, payload)
		select {
		case called <- payload.File.Name:
		default:
		}
		return dp, err
	}

	ctx, cancel := context.WithCancel(testctx.WithTest(t, time.Minute))
	defer cancel()

	c, stdout := cl(
		datapoint.WatchFlag{Label: 3, Settle: 50 * time.Millisecond},
		map[string][]string{datapoint.ARG_DATASET_ID: {"1"}, datapoint.ARG_DIR: {dir}},
	)
	done := make(chan error, 1)
	go func() {
		done <- datapoint.WatchTask()(ctx, logger.Null(), client, c, nil)
	}()

	// files written before watching starts are not seen, so keep writing until one is uploaded.
	var uploaded string
	timeout := time.After(10 * time.Second)
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
WAIT:
	for n := 0; ; n++ {
		select {
		case uploaded = <-called:
			break WAIT
		case <-ticker.C:
			writeFiles(t, dir, fmt.Sprintf("%d.png", n))
		case <-timeout:
			t.Fatal("no files are uploaded")
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("watch does not stop")
	}

	if !strings.HasSuffix(uploaded, ".png") {
		t.Errorf("unexpected upload: %s", uploaded)
	}
	if p := client.Calls.CreateDatapoint[0]; !pointer.Equal(p.Label, pointer.Ref(3)) || p.Dataset != 1 {
		t.Errorf("unexpected payload: %+v", p)
	}
	if !strings.Contains(stdout.String(), uploaded) {
		t.Errorf("uploaded datapoint is not printed: %s", stdout.String())
	}
}

func TestLabel(t *testing.T) {
	theory := func(datapointId, labelId string, then error, patched []classification.DatapointPatch) func(*testing.T) {
		return func(t *testing.T) {
			client := newClient(t)
			client.Impl.PatchDatapoint = func(ctx context.Context, id int, patch classification.DatapointPatch) (*classification.Datapoint, error) {
				return &classification.Datapoint{Id: id, Dataset: 1}, nil
			}

			c, stdout := cl(struct{}{}, map[string][]string{
				datapoint.ARG_DATASET_ID:   {"1"},
				datapoint.ARG_DATAPOINT_ID: {datapointId},
				datapoint.ARG_LABEL_ID:     {labelId},
			})
			err := datapoint.LabelTask()(context.Background(), logger.Null(), client, c, nil)
			if then != nil {
				if !errors.Is(err, then) {
					t.Errorf("expected %v, but got %v", then, err)
				}
			} else {
				if err != nil {
					t.Fatal(err)
				}
				printed := new(classification.Datapoint)
				if err := json.Unmarshal([]byte(stdout.String()), printed); err != nil {
					t.Fatalf("output is not JSON: %s", stdout.String())
				}
				if printed.Label == nil || printed.Label.ClassLabel != "dog" {
					t.Errorf("unexpected label: %s", stdout.String())
				}
			}

			actual := make([]classification.DatapointPatch, len(client.Calls.PatchDatapoint))
			for nth, a := range client.Calls.PatchDatapoint {
				actual[nth] = a.Patch
			}
			if !cmp.SliceEqWith(actual, patched, func(a, b classification.DatapointPatch) bool {
				return pointer.Equal(a.Label, b.Label) && pointer.Equal(a.ClassIndex, b.ClassIndex)
			}) {
				t.Errorf("patched: expected %+v, but got %+v", patched, actual)
			}
		}
	}

	t.Run("it sends the class index of the label", theory(
		"10", "4", nil,
		[]classification.DatapointPatch{{ClassIndex: pointer.Ref(1)}},
	))
	t.Run("unknown label is not found", theory(
		"10", "99", kerr.ErrNotFound, []classification.DatapointPatch{},
	))
	t.Run("unknown datapoint is not found", theory(
		"99", "4", kerr.ErrNotFound, []classification.DatapointPatch{},
	))
}

func TestRm(t *testing.T) {
	client := newClient(t)
	client.Impl.DeleteDatapoint = func(ctx context.Context, id int) error {
		return nil
	}

	c, _ := cl(struct{}{}, map[string][]string{
		datapoint.ARG_DATASET_ID: {"1"}, datapoint.ARG_DATAPOINT_ID: {"10"},
	})
	if err := datapoint.RmTask()(context.Background(), logger.Null(), client, c, nil); err != nil {
		t.Fatal(err)
	}
	if !cmp.SliceEq(client.Calls.DeleteDatapoint, []int{10}) {
		t.Errorf("unexpected requests: %v", client.Calls.DeleteDatapoint)
	}
}
