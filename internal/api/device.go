package api

import (
	"net/http"
	"strings"

	"github.com/homiecast/core/internal/homie"
)

// deviceResponse is the JSON view of the published device tree.
type deviceResponse struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	State string         `json:"state"`
	Topic string         `json:"topic"`
	Nodes []nodeResponse `json:"nodes"`
}

type nodeResponse struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Type       string             `json:"type"`
	Properties []propertyResponse `json:"properties"`
}

type propertyResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name,omitempty"`
	Datatype string  `json:"datatype"`
	Format   string  `json:"format,omitempty"`
	Unit     string  `json:"unit,omitempty"`
	Settable bool    `json:"settable"`
	Retained bool    `json:"retained"`
	Value    *string `json:"value"`
}

// handleGetDevice returns the full device tree with last published values.
func (s *Server) handleGetDevice(w http.ResponseWriter, _ *http.Request) {
	resp := deviceResponse{
		ID:    s.device.ID(),
		Name:  s.device.Name(),
		State: string(s.device.State()),
		Topic: strings.Join(s.device.Topic(), "/"),
		Nodes: make([]nodeResponse, 0, len(s.device.Nodes())),
	}

	for _, node := range s.device.Nodes() {
		nr := nodeResponse{
			ID:         node.ID(),
			Name:       node.Name(),
			Type:       node.Type(),
			Properties: make([]propertyResponse, 0, len(node.Properties())),
		}
		for _, prop := range node.Properties() {
			nr.Properties = append(nr.Properties, buildPropertyResponse(prop))
		}
		resp.Nodes = append(resp.Nodes, nr)
	}

	writeJSON(w, http.StatusOK, resp)
}

// buildPropertyResponse converts a property to its JSON view.
func buildPropertyResponse(prop homie.Property) propertyResponse {
	pr := propertyResponse{
		ID:       prop.ID(),
		Name:     prop.Name(),
		Datatype: string(prop.Datatype()),
		Format:   prop.Format(),
		Unit:     prop.Unit(),
		Settable: prop.Settable(),
		Retained: prop.Retained(),
	}
	if value, ok := prop.LastValue(); ok {
		pr.Value = &value
	}
	return pr
}
