package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ssoellinger/open-ldap-viewer/directory"
	"github.com/ssoellinger/open-ldap-viewer/directory/schema"
	"github.com/ssoellinger/open-ldap-viewer/ldif"
	"github.com/ssoellinger/open-ldap-viewer/registry"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeOpError maps session errors to HTTP statuses: a session without a
// live connection is a conflict the client can resolve by reconnecting, a
// failed connect is an upstream problem.
func writeOpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, directory.ErrNotConnected):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, directory.ErrConnectFailed):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// activeSession resolves the registry's active session, writing a 409 when
// there is none.
func (s *Server) activeSession(w http.ResponseWriter) (*directory.Session, bool) {
	_, m := s.registry.Active()
	if m == nil {
		writeError(w, http.StatusConflict, "no active session")
		return nil, false
	}
	return m.Session, true
}

func (s *Server) handleDefaults(w http.ResponseWriter, r *http.Request) {
	defaults := s.defaults
	defaults.Password = ""
	writeJSON(w, http.StatusOK, defaults)
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	var settings directory.ConnectionSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if settings.Server == "" {
		writeError(w, http.StatusBadRequest, "server is required")
		return
	}

	session := directory.NewSession(s.log)
	if err := session.Connect(settings); err != nil {
		writeOpError(w, err)
		return
	}

	name := settings.Name
	if name == "" {
		name = settings.Server
	}
	token := s.registry.Add(name, session)
	writeJSON(w, http.StatusCreated, map[string]string{"token": token})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.List())
}

func (s *Server) handleActivateSession(w http.ResponseWriter, r *http.Request) {
	if err := s.registry.SetActive(r.PathValue("id")); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleReconnectSession(w http.ResponseWriter, r *http.Request) {
	err := s.registry.Reconnect(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, registry.ErrNoSuchSession) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleRemoveSession(w http.ResponseWriter, r *http.Request) {
	if err := s.registry.Remove(r.PathValue("id")); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type treeNode struct {
	Dn          string `json:"dn"`
	DisplayName string `json:"displayName"`
	HasChildren bool   `json:"hasChildren"`
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	session, ok := s.activeSession(w)
	if !ok {
		return
	}
	dn := r.URL.Query().Get("dn")
	if dn == "" {
		writeError(w, http.StatusBadRequest, "dn is required")
		return
	}

	children, err := session.GetChildren(dn)
	if err != nil {
		writeOpError(w, err)
		return
	}

	nodes := make([]treeNode, 0, len(children))
	for _, child := range children {
		has, err := session.HasChildren(child.Dn)
		if err != nil {
			s.log.WithField("dn", child.Dn).Warnf("child probe failed: %v", err)
		}
		nodes = append(nodes, treeNode{
			Dn:          child.Dn,
			DisplayName: child.DisplayName(),
			HasChildren: has,
		})
	}
	writeJSON(w, http.StatusOK, nodes)
}

func (s *Server) handleChildCount(w http.ResponseWriter, r *http.Request) {
	session, ok := s.activeSession(w)
	if !ok {
		return
	}
	dn := r.URL.Query().Get("dn")
	if dn == "" {
		writeError(w, http.StatusBadRequest, "dn is required")
		return
	}

	count, err := session.GetChildCount(dn)
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	session, ok := s.activeSession(w)
	if !ok {
		return
	}
	dn := r.URL.Query().Get("dn")
	if dn == "" {
		writeError(w, http.StatusBadRequest, "dn is required")
		return
	}

	entry, err := session.GetEntry(dn)
	if err != nil {
		writeOpError(w, err)
		return
	}
	if entry == nil {
		writeError(w, http.StatusNotFound, "no such entry")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleBinaryAttribute(w http.ResponseWriter, r *http.Request) {
	session, ok := s.activeSession(w)
	if !ok {
		return
	}
	dn := r.URL.Query().Get("dn")
	attribute := r.URL.Query().Get("attribute")
	if dn == "" || attribute == "" {
		writeError(w, http.StatusBadRequest, "dn and attribute are required")
		return
	}

	value, err := session.GetBinaryAttribute(dn, attribute)
	if err != nil {
		writeOpError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", attribute))
	w.Write(value)
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	session, ok := s.activeSession(w)
	if !ok {
		return
	}
	var body struct {
		Dn         string              `json:"dn"`
		Attributes map[string][]string `json:"attributes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Dn == "" {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := session.CreateEntry(body.Dn, body.Attributes); err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]bool{"ok": true})
}

func (s *Server) handleModifyEntry(w http.ResponseWriter, r *http.Request) {
	session, ok := s.activeSession(w)
	if !ok {
		return
	}
	var body struct {
		Dn            string                   `json:"dn"`
		Modifications []directory.Modification `json:"modifications"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Dn == "" {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := session.ModifyEntry(body.Dn, body.Modifications); err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	session, ok := s.activeSession(w)
	if !ok {
		return
	}
	dn := r.URL.Query().Get("dn")
	if dn == "" {
		writeError(w, http.StatusBadRequest, "dn is required")
		return
	}

	if err := session.DeleteEntry(dn); err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleMoveEntry(w http.ResponseWriter, r *http.Request) {
	session, ok := s.activeSession(w)
	if !ok {
		return
	}
	var body struct {
		Dn          string `json:"dn"`
		NewRdn      string `json:"newRdn"`
		NewParentDn string `json:"newParentDn"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Dn == "" || body.NewRdn == "" {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := session.MoveEntry(body.Dn, body.NewRdn, body.NewParentDn); err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleSetPassword(w http.ResponseWriter, r *http.Request) {
	session, ok := s.activeSession(w)
	if !ok {
		return
	}
	var body struct {
		Dn        string `json:"dn"`
		Password  string `json:"password"`
		Algorithm string `json:"algorithm"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Dn == "" {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := session.SetPassword(body.Dn, body.Password, body.Algorithm); err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleSearch accepts either a raw filter or an attribute/term pair that is
// turned into an escaped quick-search filter.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	session, ok := s.activeSession(w)
	if !ok {
		return
	}

	baseDn := r.URL.Query().Get("base")
	if baseDn == "" {
		baseDn = session.Settings().BaseDn
	}

	filter := r.URL.Query().Get("filter")
	if filter == "" {
		attribute := r.URL.Query().Get("attribute")
		term := r.URL.Query().Get("term")
		if attribute == "" || term == "" {
			writeError(w, http.StatusBadRequest, "filter or attribute and term are required")
			return
		}
		filter = directory.QuickSearchFilter(attribute, term)
	}

	entries, err := session.Search(baseDn, filter)
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	session, ok := s.activeSession(w)
	if !ok {
		return
	}
	sch, err := session.GetSchema()
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sch)
}

// handleSchemaAttributes resolves the editable attribute set for a given list
// of objectClasses, including inherited ones.
func (s *Server) handleSchemaAttributes(w http.ResponseWriter, r *http.Request) {
	session, ok := s.activeSession(w)
	if !ok {
		return
	}
	classes := r.URL.Query()["objectClass"]
	if len(classes) == 0 {
		writeError(w, http.StatusBadRequest, "objectClass is required")
		return
	}

	sch, err := session.GetSchema()
	if err != nil {
		writeOpError(w, err)
		return
	}

	rdnAttr, _ := schema.TypicalRdnAttribute(classes)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"required":     sch.RequiredAttributes(classes),
		"allowed":      sch.AllowedAttributes(classes),
		"rdnAttribute": rdnAttr,
	})
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	session, ok := s.activeSession(w)
	if !ok {
		return
	}
	baseDn := r.URL.Query().Get("base")
	if baseDn == "" {
		baseDn = session.Settings().BaseDn
	}

	counts, err := session.GetStatistics(baseDn)
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

func (s *Server) handleOuStatistics(w http.ResponseWriter, r *http.Request) {
	session, ok := s.activeSession(w)
	if !ok {
		return
	}
	baseDn := r.URL.Query().Get("base")
	if baseDn == "" {
		baseDn = session.Settings().BaseDn
	}

	counts, err := session.GetOuStatistics(baseDn)
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

func (s *Server) handleNamingContexts(w http.ResponseWriter, r *http.Request) {
	session, ok := s.activeSession(w)
	if !ok {
		return
	}
	contexts, err := session.GetNamingContexts()
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contexts)
}

func (s *Server) handleWhoAmI(w http.ResponseWriter, r *http.Request) {
	session, ok := s.activeSession(w)
	if !ok {
		return
	}
	authzID, err := session.WhoAmI()
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"authzId": authzID})
}

// handleTestBind reports the bind outcome in the body: a wrong password is a
// valid answer, not a server error.
func (s *Server) handleTestBind(w http.ResponseWriter, r *http.Request) {
	session, ok := s.activeSession(w)
	if !ok {
		return
	}
	var body struct {
		Dn       string `json:"dn"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Dn == "" {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := session.TestBind(body.Dn, body.Password); err != nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"ok": false, "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

func (s *Server) handleApplyLdif(w http.ResponseWriter, r *http.Request) {
	session, ok := s.activeSession(w)
	if !ok {
		return
	}
	text, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read request body")
		return
	}

	operations := ldif.Parse(string(text))
	if len(operations) == 0 {
		writeError(w, http.StatusBadRequest, "no operations in input")
		return
	}
	writeJSON(w, http.StatusOK, ldif.Apply(session, operations))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	session, ok := s.activeSession(w)
	if !ok {
		return
	}
	baseDn := r.URL.Query().Get("base")
	if baseDn == "" {
		baseDn = session.Settings().BaseDn
	}

	entries, err := session.GetSubtree(baseDn)
	if err != nil {
		writeOpError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=\"export.ldif\"")
	io.WriteString(w, ldif.EntriesToLdif(entries))
}
