package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

// DefaultScene is rendered when the request names none
const DefaultScene = "three-spheres"

// progressRows is the number of rows between progress console messages
const progressRows = 3

// RenderRequest represents a render request from the client.
// Zero values mean "use the scene default".
type RenderRequest struct {
	Scene      string `json:"scene"`
	Width      int    `json:"width"`
	MaxSamples int    `json:"maxSamples"`
	MaxPasses  int    `json:"maxPasses"`
	MaxDepth   int    `json:"maxDepth"`
}

// PassUpdate is sent after every completed pass
type PassUpdate struct {
	PassNumber     int     `json:"passNumber"`
	TotalPasses    int     `json:"totalPasses"`
	ImageData      string  `json:"imageData"` // Base64 encoded PNG
	ElapsedMs      int64   `json:"elapsedMs"`
	TotalPixels    int     `json:"totalPixels"`
	TotalSamples   int     `json:"totalSamples"`
	AverageSamples float64 `json:"averageSamples"`
	MinSamples     int     `json:"minSamples"`
	MaxSamplesUsed int     `json:"maxSamplesUsed"`
	PrimitiveCount int     `json:"primitiveCount"`
	IsComplete     bool    `json:"isComplete"`
}

// SSEEvent represents a unified SSE event for single-writer output
type SSEEvent struct {
	Type string `json:"type"` // "console", "passComplete", "error", "complete"
	Data string `json:"data"` // JSON-encoded data or plain message
}

// RenderingPipeline contains the configured scene and raytracer
type RenderingPipeline struct {
	Scene     *scene.Scene
	Raytracer *renderer.ProgressiveRaytracer
}

// handleRender streams a progressive render as Server-Sent Events
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	setSSEHeaders(w)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sseEventChan := make(chan SSEEvent, 100)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		writeSSEEvents(r.Context(), w, sseEventChan)
	}()

	var consoleWG sync.WaitGroup
	defer func() {
		cancel()
		consoleWG.Wait()
		close(sseEventChan)
		<-writerDone
	}()

	req, err := parseRenderRequest(r)
	if err != nil {
		sendError(ctx, sseEventChan, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	consoleChan, webLogger := setupConsoleLogging()
	consoleWG.Add(1)
	go func() {
		defer consoleWG.Done()
		streamConsoleMessages(ctx, consoleChan, sseEventChan)
	}()

	pipeline, err := s.setupRenderingPipeline(req, webLogger)
	if err != nil {
		sendError(ctx, sseEventChan, err.Error())
		return
	}

	startTime := time.Now()
	passChan, errChan := pipeline.Raytracer.RenderProgressive(ctx)
	handleRenderingEvents(ctx, sseEventChan, passChan, errChan, pipeline.Scene, req, startTime)
}

// setSSEHeaders sets the required headers for Server-Sent Events
func setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// setupConsoleLogging creates console channel and web logger for a render
func setupConsoleLogging() (chan ConsoleMessage, core.Logger) {
	consoleChan := make(chan ConsoleMessage, 50)
	renderID := fmt.Sprintf("render-%d", time.Now().UnixNano())
	return consoleChan, NewWebLogger(renderID, consoleChan)
}

// writeSSEEvents writes every event until the channel is closed or the client leaves
func writeSSEEvents(ctx context.Context, w http.ResponseWriter, sseEventChan <-chan SSEEvent) {
	for {
		select {
		case event, ok := <-sseEventChan:
			if !ok {
				return
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, event.Data); err != nil {
				return
			}
			if flusher, ok := w.(http.Flusher); ok {
				flusher.Flush()
			}

		case <-ctx.Done():
			return
		}
	}
}

// streamConsoleMessages forwards log lines until ctx is cancelled. Messages are
// dropped when the event channel is full.
func streamConsoleMessages(ctx context.Context, consoleChan <-chan ConsoleMessage, sseEventChan chan<- SSEEvent) {
	for {
		select {
		case consoleMsg := <-consoleChan:
			data, err := json.Marshal(consoleMsg)
			if err != nil {
				log.Printf("Error marshaling console message: %v", err)
				continue
			}
			select {
			case sseEventChan <- SSEEvent{Type: "console", Data: string(data)}:
			case <-ctx.Done():
				return
			default:
			}

		case <-ctx.Done():
			return
		}
	}
}

// setupRenderingPipeline creates and configures the scene and raytracer
func (s *Server) setupRenderingPipeline(req *RenderRequest, logger core.Logger) (*RenderingPipeline, error) {
	sceneObj, err := s.createScene(req.Scene)
	if err != nil {
		return nil, err
	}
	if req.Width > 0 {
		sceneObj.SetWidth(req.Width)
	}

	rt, err := sceneObj.NewRaytracer(renderer.SamplingConfig{
		SamplesPerPixel: req.MaxSamples,
		MaxDepth:        req.MaxDepth,
	})
	if err != nil {
		return nil, err
	}
	rt.SetProgressFunc(func(p renderer.Progress) {
		if p.Y%progressRows == 0 {
			logger.Printf("Row %d/%d (%.0f%%)\n", p.Y+1, p.Height, p.Percent())
		}
	})

	config := renderer.ProgressiveConfig{
		InitialSamples:     1,
		MaxSamplesPerPixel: rt.Config().SamplesPerPixel,
		MaxPasses:          req.MaxPasses,
	}
	raytracer, err := renderer.NewProgressiveRaytracer(rt, config, logger)
	if err != nil {
		return nil, err
	}

	logger.Printf("Rendering %s: %dx%d, %d spheres\n",
		sceneObj.Name, rt.Config().Width, rt.Config().Height, sceneObj.GetPrimitiveCount())
	return &RenderingPipeline{Scene: sceneObj, Raytracer: raytracer}, nil
}

// handleRenderingEvents forwards pass results until rendering finishes or fails
func handleRenderingEvents(ctx context.Context, sseEventChan chan<- SSEEvent,
	passChan <-chan renderer.PassResult, errChan <-chan error,
	scene *scene.Scene, req *RenderRequest, startTime time.Time) {

	for passResult := range passChan {
		handlePassComplete(ctx, sseEventChan, passResult, req, scene, startTime)
	}

	if err := <-errChan; err != nil {
		if ctx.Err() == nil {
			sendError(ctx, sseEventChan, fmt.Sprintf("Rendering failed: %v", err))
		}
		return
	}

	select {
	case sseEventChan <- SSEEvent{Type: "complete", Data: "Rendering completed"}:
	case <-ctx.Done():
	}
}

// handlePassComplete encodes the pass image and sends it with the pass statistics
func handlePassComplete(ctx context.Context, sseEventChan chan<- SSEEvent, passResult renderer.PassResult, req *RenderRequest, scene *scene.Scene, startTime time.Time) {
	imageData, err := imageToBase64PNG(passResult.Image)
	if err != nil {
		log.Printf("Error encoding pass %d: %v", passResult.PassNumber, err)
		return
	}

	update := PassUpdate{
		PassNumber:     passResult.PassNumber,
		TotalPasses:    req.MaxPasses,
		ImageData:      imageData,
		ElapsedMs:      time.Since(startTime).Milliseconds(),
		TotalPixels:    passResult.Stats.TotalPixels,
		TotalSamples:   passResult.Stats.TotalSamples,
		AverageSamples: passResult.Stats.AverageSamples,
		MinSamples:     passResult.Stats.MinSamples,
		MaxSamplesUsed: passResult.Stats.MaxSamplesUsed,
		PrimitiveCount: scene.GetPrimitiveCount(),
		IsComplete:     passResult.IsLast,
	}

	data, err := json.Marshal(update)
	if err != nil {
		log.Printf("Error marshaling pass update: %v", err)
		return
	}

	select {
	case sseEventChan <- SSEEvent{Type: "passComplete", Data: string(data)}:
	case <-ctx.Done():
	}
}

// parseRenderRequest parses request parameters
func parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	query := r.URL.Query()
	req := &RenderRequest{Scene: query.Get("scene")}
	if req.Scene == "" {
		req.Scene = DefaultScene
	}

	var err error
	if req.Width, err = parseIntParam(query, "width", 0, MinWidth, MaxWidth); err != nil {
		return nil, err
	}
	if req.MaxSamples, err = parseIntParam(query, "maxSamples", 0, 1, MaxSamples); err != nil {
		return nil, err
	}
	if req.MaxPasses, err = parseIntParam(query, "maxPasses", 7, 1, MaxPasses); err != nil {
		return nil, err
	}
	if req.MaxDepth, err = parseIntParam(query, "maxDepth", 0, 1, MaxDepthLimit); err != nil {
		return nil, err
	}

	if req.Width > 800 && req.MaxSamples > 100 {
		log.Printf("Render warning: Large image with high samples may render slowly")
	}

	return req, nil
}

// sendError sends an error event to the SSE channel
func sendError(ctx context.Context, sseEventChan chan<- SSEEvent, message string) {
	select {
	case sseEventChan <- SSEEvent{Type: "error", Data: message}:
	case <-ctx.Done():
	}
}
