package transport

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/Iron-Ham/callbridge/internal/logging"
)

const maxFrameSize = 1 << 20

// ServeStream serves newline-delimited requests from r, writing one
// response line per request to w, until r is exhausted or ctx is done.
// Blank lines are ignored.
func ServeStream(ctx context.Context, d Dispatcher, r io.Reader, w io.Writer, logger *logging.Logger) error {
	if logger == nil {
		logger = logging.NopLogger()
	}
	logger = logger.WithComponent("stdio")

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxFrameSize)
	enc := json.NewEncoder(w)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Bytes()
		if strings.TrimSpace(string(line)) == "" {
			continue
		}

		resp, req, elapsed := handleFrame(ctx, d, line)
		logger.Debug("request served",
			"channel", req.Channel,
			"method", req.Method,
			"status", string(resp.Status),
			"duration_ms", elapsed.Milliseconds())

		if err := enc.Encode(resp); err != nil {
			return err
		}
	}
	return scanner.Err()
}
