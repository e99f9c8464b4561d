package semantic

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// EndpointPath is the semantic patch endpoint's route.
const EndpointPath = "/api/flowbridge/semantic"

// NewMockRouter serves the semantic endpoint in mock mode: deterministic
// renames derived from the request outline, no HTML or CSS patches. The CLI's
// --mock mode and the tests run against it.
func NewMockRouter(log *zap.Logger) *mux.Router {
	if log == nil {
		log = zap.NewNop()
	}
	r := mux.NewRouter()
	r.HandleFunc(EndpointPath, func(w http.ResponseWriter, req *http.Request) {
		handleMock(w, req, log.Named("semantic-mock"))
	}).Methods(http.MethodPost)
	return r
}

var mockGeneric = regexp.MustCompile(`^(Section( \d+)?|Block|Wrapper|Div|Content)$`)

func handleMock(w http.ResponseWriter, req *http.Request, log *zap.Logger) {
	var env requestEnvelope
	if err := json.UnmarshalRead(req.Body, &env); err != nil || env.Request == nil {
		writeEnvelope(w, responseEnvelope{OK: false, Meta: Meta{Mode: "mock", Reason: "malformed request"}})
		return
	}

	// Rename still-generic components after the first outline text under
	// their root node; that is all the mock knows how to do.
	textByNode := map[string]string{}
	for _, n := range env.Request.DOMOutline {
		if n.Text != "" {
			textByNode[n.NodeID] = n.Text
		}
	}
	resp := &Response{}
	for _, comp := range env.Request.Components {
		if !mockGeneric.MatchString(comp.Name) {
			continue
		}
		for _, root := range comp.RootNodeIDs {
			if text, ok := textByNode[root]; ok {
				resp.ComponentRenames = append(resp.ComponentRenames, Rename{
					ID:   comp.ComponentID,
					Name: truncateWords(text, 4),
				})
				break
			}
		}
	}

	raw, err := json.Marshal(resp)
	if err != nil {
		writeEnvelope(w, responseEnvelope{OK: false, Meta: Meta{Mode: "mock", Reason: "encode failure"}})
		return
	}
	log.Debug("mock semantic round", zap.Int("renames", len(resp.ComponentRenames)))
	writeEnvelope(w, responseEnvelope{OK: true, Response: jsontext.Value(raw), Meta: Meta{Mode: "mock", OutputSize: len(raw)}})
}

func writeEnvelope(w http.ResponseWriter, env responseEnvelope) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.MarshalWrite(w, env)
}

func truncateWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}
