package importer

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"mealplanner/internal/ingredients"
	"mealplanner/internal/paritycheck"

	"github.com/invopop/jsonschema"
	"github.com/samber/lo"
)

const (
	maxTextBytes  = 64 << 10
	maxImageBytes = 10 << 20
)

type server struct {
	svc    *Service
	schema []byte
}

// NewHandler serves the ingredient import endpoints.
func NewHandler(svc *Service) *server {
	return &server{svc: svc, schema: ingredientSchema()}
}

func (s *server) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/ingredients/parse", s.handleParse)
	mux.HandleFunc("POST /api/ingredients/parse-image", s.handleParseImage)
	mux.HandleFunc("POST /api/ingredients/debug", s.handleDebug)
	mux.HandleFunc("GET /api/ingredients/categories", s.handleCategories)
	mux.HandleFunc("GET /api/ingredients/schema", s.handleSchema)
}

type parseRequest struct {
	Text   string `json:"text"`
	Parser string `json:"parser,omitempty"`
}

type parseResponse struct {
	Parser      Strategy                       `json:"parser"`
	Ingredients []ingredients.ParsedIngredient `json:"ingredients"`
}

type debugResponse struct {
	Parser Strategy            `json:"parser"`
	Report *paritycheck.Report `json:"report"`
	Lines  []string            `json:"lines"`
	Error  string              `json:"error,omitempty"`
}

func (s *server) decode(w http.ResponseWriter, r *http.Request) (parseRequest, Strategy, bool) {
	var req parseRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxTextBytes)).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return req, "", false
	}
	strategy, err := ParseStrategy(req.Parser, s.svc.Default())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return req, "", false
	}
	if strings.TrimSpace(req.Text) == "" {
		http.Error(w, "text is required", http.StatusBadRequest)
		return req, "", false
	}
	return req, strategy, true
}

func (s *server) handleParse(w http.ResponseWriter, r *http.Request) {
	req, strategy, ok := s.decode(w, r)
	if !ok {
		return
	}
	out, err := s.svc.Parse(r.Context(), strategy, req.Text)
	if err != nil {
		s.parseError(w, r, err)
		return
	}
	writeJSON(w, r, parseResponse{Parser: strategy, Ingredients: out})
}

func (s *server) handleParseImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes+(1<<20))
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}
	strategy, err := ParseStrategy(r.FormValue("parser"), s.svc.Default())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "image is required", http.StatusBadRequest)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		slog.ErrorContext(ctx, "failed to read uploaded image", "filename", header.Filename, "error", err)
		http.Error(w, "unable to read image", http.StatusBadRequest)
		return
	}
	img, err := ingredients.NewImage(data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	out, err := s.svc.ParseImage(ctx, strategy, img)
	if err != nil {
		s.parseError(w, r, err)
		return
	}
	writeJSON(w, r, parseResponse{Parser: strategy, Ingredients: out})
}

// handleDebug compares the rule-based parser against a prompt-driven one on
// the posted text, or on the builtin cases when text is empty.
func (s *server) handleDebug(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req parseRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxTextBytes)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
	}
	strategy, err := ParseStrategy(req.Parser, s.svc.Default())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	prompt, err := s.svc.Parser(strategy)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	collector := &paritycheck.Collector{}
	report, err := paritycheck.New(prompt, string(strategy), collector).Run(ctx, strings.TrimSpace(req.Text))
	resp := debugResponse{Parser: strategy, Report: report, Lines: collector.Lines()}
	if err != nil {
		slog.WarnContext(ctx, "parser comparison had failures", "parser", strategy, "error", err)
		resp.Error = err.Error()
	}
	writeJSON(w, r, resp)
}

func (s *server) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, ingredients.Categories())
}

func (s *server) handleSchema(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/schema+json")
	if _, err := w.Write(s.schema); err != nil {
		slog.ErrorContext(r.Context(), "failed to write schema", "error", err)
	}
}

func (s *server) parseError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrImageUnsupported), errors.Is(err, ErrUnknownStrategy), errors.Is(err, ingredients.ErrUnreadableImage):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		// cause was logged by the service
		http.Error(w, ingredients.ErrParseFailed.Error(), http.StatusBadGateway)
	}
}

func ingredientSchema() []byte {
	r := jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t != reflect.TypeFor[ingredients.Category]() {
				return nil
			}
			return &jsonschema.Schema{
				Type: "string",
				Enum: lo.Map(ingredients.Categories(), func(c ingredients.Category, _ int) any { return string(c) }),
			}
		},
	}
	return lo.Must(json.MarshalIndent(r.Reflect(&ingredients.ParsedIngredient{}), "", "  "))
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(r.Context(), "failed to write response", "error", err)
	}
}
