package google

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// LoopbackPrompter receives the authorization code on a local HTTP listener
// that the provider redirects to after consent.
type LoopbackPrompter struct {
	out  io.Writer
	open func(authURL string) error
}

// NewLoopbackPrompter creates a prompter that prints the authorization URL to
// out. If open is non-nil it is called with the URL as well, e.g. to launch a
// browser.
func NewLoopbackPrompter(out io.Writer, open func(authURL string) error) *LoopbackPrompter {
	return &LoopbackPrompter{out: out, open: open}
}

type callbackResult struct {
	code string
	err  error
}

// PromptCode implements ConsentPrompter.
func (p *LoopbackPrompter) PromptCode(ctx context.Context, req ConsentRequest) (string, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", fmt.Errorf("failed to start callback listener: %w", err)
	}

	results := make(chan callbackResult, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		code, err := codeFromQuery(r.URL.Query(), req.State)
		if err != nil {
			http.Error(w, "Authorization failed: "+err.Error(), http.StatusBadRequest)
		} else {
			fmt.Fprintln(w, "Authorization complete. You may close this window.")
		}
		select {
		case results <- callbackResult{code: code, err: err}:
		default:
		}
	})

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() { _ = srv.Serve(ln) }()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	authURL := req.AuthCodeURL("http://" + ln.Addr().String() + "/")
	fmt.Fprintf(p.out, "Go to the following link in your browser and authorize access:\n\n%s\n\nWaiting for authorization...\n", authURL)
	if p.open != nil {
		if err := p.open(authURL); err != nil {
			fmt.Fprintf(p.out, "Could not open the browser automatically: %v\n", err)
		}
	}

	select {
	case res := <-results:
		return res.code, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
