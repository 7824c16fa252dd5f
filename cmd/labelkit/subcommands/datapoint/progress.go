package datapoint

import (
	"io"

	pb "github.com/cheggaaa/pb/v3"
	"github.com/opst/labelkit/cmd/labelkit/rest"
)

// withProgress makes u show a progress bar in out while being sent.
func withProgress(u rest.Upload, out io.Writer) rest.Upload {
	open := u.Open
	u.Open = func() (io.ReadCloser, error) {
		rc, err := open()
		if err != nil {
			return nil, err
		}

		bar := pb.New64(max(u.Size, 0))
		bar.Set(pb.Bytes, true)
		bar.Set("prefix", ellipsis(u.Name, 40)+":")
		bar.SetWriter(out)
		if err := bar.Err(); err != nil {
			rc.Close()
			return nil, err
		}
		bar.Start()
		return &progressReader{Reader: bar.NewProxyReader(rc), content: rc, bar: bar}, nil
	}
	return u
}

type progressReader struct {
	io.Reader
	content io.Closer
	bar     *pb.ProgressBar
}

func (r *progressReader) Close() error {
	r.bar.Finish()
	return r.content.Close()
}

func ellipsis(s string, length int) string {
	r := []rune(s)
	if len(r) <= length {
		return s
	}
	return "..." + string(r[len(r)-length+3:])
}
