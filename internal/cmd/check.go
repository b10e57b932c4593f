package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/katapios/lazybones/internal/channel"
)

// checkTimeout bounds a single connection check.
const checkTimeout = 15 * time.Second

// checkChannels validates each channel's credentials and connectivity,
// printing the identity every successful one reports. The returned
// error names the channels that failed.
func checkChannels(ctx context.Context, out io.Writer, channels []channel.Channel) error {
	var failed []string
	for _, ch := range channels {
		cctx, cancel := context.WithTimeout(ctx, checkTimeout)
		identity, err := ch.ValidateConnection(cctx)
		cancel()
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", ch.Type(), err)
			failed = append(failed, string(ch.Type()))
			continue
		}
		fmt.Fprintf(out, "%s: ok (%s)\n", ch.Type(), identity)
	}
	if len(failed) > 0 {
		return fmt.Errorf("connection check failed for %s", strings.Join(failed, ", "))
	}
	return nil
}
