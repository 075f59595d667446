package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// Engine rasterizes a rendered HTML file into a PDF.
type Engine interface {
	RenderPDF(ctx context.Context, htmlPath, pdfPath string) error
}

// ChromeConfig controls the headless Chrome PDF engine.
type ChromeConfig struct {
	// NavTimeout bounds a single render.
	NavTimeout time.Duration
}

// ChromeEngine implements Engine using chromedp and headless Chrome.
type ChromeEngine struct {
	cfg         ChromeConfig
	allocator   context.Context
	allocCancel context.CancelFunc
}

// NewChromeEngine creates a PDF engine backed by a shared Chrome allocator.
func NewChromeEngine(cfg ChromeConfig) *ChromeEngine {
	if cfg.NavTimeout <= 0 {
		cfg.NavTimeout = 45 * time.Second
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", "new"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &ChromeEngine{
		cfg:         cfg,
		allocator:   allocCtx,
		allocCancel: allocCancel,
	}
}

// Close cancels the allocator context.
func (e *ChromeEngine) Close() {
	e.allocCancel()
}

// RenderPDF navigates Chrome to the HTML file and prints it to pdfPath.
func (e *ChromeEngine) RenderPDF(ctx context.Context, htmlPath, pdfPath string) error {
	absHTML, err := filepath.Abs(htmlPath)
	if err != nil {
		return fmt.Errorf("resolve html path: %w", err)
	}

	taskCtx, taskCancel := chromedp.NewContext(e.allocator)
	defer taskCancel()

	taskCtx, cancel := context.WithTimeout(taskCtx, e.cfg.NavTimeout)
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var pdf []byte
	err = chromedp.Run(taskCtx,
		chromedp.Navigate("file://"+absHTML),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return fmt.Errorf("print to pdf: %w", err)
	}

	if err := os.WriteFile(pdfPath, pdf, 0o644); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
