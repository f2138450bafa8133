package admin

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/stubkit/stubd/internal/storage"
	"github.com/stubkit/stubd/pkg/config"
	"github.com/stubkit/stubd/pkg/httputil"
	"github.com/stubkit/stubd/pkg/stub"
)

// errInvalidIndex is returned for index segments that are not non-negative integers.
var errInvalidIndex = errors.New("index must be a non-negative integer")

// errSingleLifecycle is returned when a PUT body does not hold exactly one lifecycle.
var errSingleLifecycle = errors.New("PUT body must contain exactly one stub request")

// handleList serves GET /.
func (a *AdminAPI) handleList(w http.ResponseWriter, r *http.Request) {
	a.writeCatalog(w, r, a.store.All())
}

// handleGet serves GET /{index}.
func (a *AdminAPI) handleGet(w http.ResponseWriter, r *http.Request) {
	index, ok := a.parseIndex(w, r)
	if !ok {
		return
	}
	lc, found := a.store.Get(index)
	if !found {
		httputil.WriteText(w, http.StatusNotFound, fmt.Sprintf("Stub request index#%d does not exist", index))
		return
	}
	a.writeCatalog(w, r, []*stub.Lifecycle{lc})
}

// handleCreate serves POST /.
func (a *AdminAPI) handleCreate(w http.ResponseWriter, r *http.Request) {
	body, ok := a.readBody(w, r)
	if !ok {
		return
	}
	if len(body) == 0 {
		httputil.WriteText(w, http.StatusNoContent, "POST request on URI / was empty")
		return
	}
	lifecycles, err := config.Parse(body, a.baseDir)
	if err != nil {
		a.fail(w, err)
		return
	}
	if len(lifecycles) == 0 {
		httputil.WriteText(w, http.StatusNoContent, "POST request on URI / contained no stub requests")
		return
	}

	first, err := a.store.Append(lifecycles...)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.log.Info("stubs created", "count", len(lifecycles), "first_index", first)
	w.Header().Set("Location", storage.Locator(first))
	httputil.WriteText(w, http.StatusCreated,
		fmt.Sprintf("Configuration created successfully: %d stub request(s) added", len(lifecycles)))
}

// handleRootNotAllowed serves PUT / and DELETE /, which have no target.
func (a *AdminAPI) handleRootNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", "GET, POST")
	httputil.WriteText(w, http.StatusMethodNotAllowed,
		fmt.Sprintf("Method %s is not allowed on URI %s", r.Method, r.URL.Path))
}

// handleUpdate serves PUT /{index}.
func (a *AdminAPI) handleUpdate(w http.ResponseWriter, r *http.Request) {
	index, ok := a.parseIndex(w, r)
	if !ok {
		return
	}
	if !a.store.ExistsByIndex(index) {
		httputil.WriteText(w, http.StatusNoContent,
			fmt.Sprintf("Stub request index#%d does not exist, cannot update", index))
		return
	}
	lc, ok := a.readReplacement(w, r)
	if !ok {
		return
	}

	locator, err := a.store.UpdateByIndex(index, lc)
	if errors.Is(err, storage.ErrNotFound) {
		// Removed between the existence check and the write.
		httputil.WriteText(w, http.StatusNoContent,
			fmt.Sprintf("Stub request index#%d does not exist, cannot update", index))
		return
	}
	if err != nil {
		a.fail(w, err)
		return
	}
	a.log.Info("stub updated", "index", index, "id", lc.ID)
	w.Header().Set("Location", locator)
	httputil.WriteText(w, http.StatusCreated, fmt.Sprintf("Stub request index#%d updated successfully", index))
}

// handleDelete serves DELETE /{index}.
func (a *AdminAPI) handleDelete(w http.ResponseWriter, r *http.Request) {
	index, ok := a.parseIndex(w, r)
	if !ok {
		return
	}
	removed, err := a.store.DeleteByIndex(index)
	if errors.Is(err, storage.ErrNotFound) {
		httputil.WriteText(w, http.StatusNotFound,
			fmt.Sprintf("Stub request index#%d does not exist, cannot delete", index))
		return
	}
	if err != nil {
		a.fail(w, err)
		return
	}
	a.log.Info("stub deleted", "index", index, "id", removed.ID)
	httputil.WriteText(w, http.StatusOK, fmt.Sprintf("Stub request index#%d deleted successfully", index))
}

// handleGetByID serves GET /id/{id}.
func (a *AdminAPI) handleGetByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	index, found := a.store.IndexOf(id)
	if !found {
		httputil.WriteText(w, http.StatusNotFound, fmt.Sprintf("Stub request id %s does not exist", id))
		return
	}
	lc, found := a.store.Get(index)
	if !found {
		httputil.WriteText(w, http.StatusNotFound, fmt.Sprintf("Stub request id %s does not exist", id))
		return
	}
	a.writeCatalog(w, r, []*stub.Lifecycle{lc})
}

// handleUpdateByID serves PUT /id/{id}. The replacement keeps the id.
func (a *AdminAPI) handleUpdateByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, found := a.store.IndexOf(id); !found {
		httputil.WriteText(w, http.StatusNoContent,
			fmt.Sprintf("Stub request id %s does not exist, cannot update", id))
		return
	}
	lc, ok := a.readReplacement(w, r)
	if !ok {
		return
	}

	index, err := a.store.UpdateByID(id, lc)
	if errors.Is(err, storage.ErrNotFound) {
		httputil.WriteText(w, http.StatusNoContent,
			fmt.Sprintf("Stub request id %s does not exist, cannot update", id))
		return
	}
	if err != nil {
		a.fail(w, err)
		return
	}
	a.log.Info("stub updated", "index", index, "id", id)
	w.Header().Set("Location", "/id/"+id)
	httputil.WriteText(w, http.StatusCreated,
		fmt.Sprintf("Stub request id %s (index#%d) updated successfully", id, index))
}

// handleDeleteByID serves DELETE /id/{id}.
func (a *AdminAPI) handleDeleteByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	index, _, err := a.store.DeleteByID(id)
	if errors.Is(err, storage.ErrNotFound) {
		httputil.WriteText(w, http.StatusNotFound,
			fmt.Sprintf("Stub request id %s does not exist, cannot delete", id))
		return
	}
	if err != nil {
		a.fail(w, err)
		return
	}
	a.log.Info("stub deleted", "index", index, "id", id)
	httputil.WriteText(w, http.StatusOK,
		fmt.Sprintf("Stub request id %s (index#%d) deleted successfully", id, index))
}

// readReplacement reads a PUT body that must hold exactly one lifecycle.
// It writes the response itself and returns false when there is nothing to apply.
func (a *AdminAPI) readReplacement(w http.ResponseWriter, r *http.Request) (*stub.Lifecycle, bool) {
	body, ok := a.readBody(w, r)
	if !ok {
		return nil, false
	}
	if len(body) == 0 {
		httputil.WriteText(w, http.StatusNoContent, fmt.Sprintf("PUT request on URI %s was empty", r.URL.Path))
		return nil, false
	}
	lifecycles, err := config.Parse(body, a.baseDir)
	if err != nil {
		a.fail(w, err)
		return nil, false
	}
	if len(lifecycles) != 1 {
		a.fail(w, fmt.Errorf("%w, got %d", errSingleLifecycle, len(lifecycles)))
		return nil, false
	}
	return lifecycles[0], true
}

func (a *AdminAPI) parseIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.PathValue("index")
	index, err := strconv.Atoi(raw)
	if err != nil || index < 0 {
		httputil.WriteText(w, http.StatusBadRequest, fmt.Sprintf("Invalid index %q: %v", raw, errInvalidIndex))
		return 0, false
	}
	return index, true
}

func (a *AdminAPI) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.WriteText(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("Request body exceeds %d bytes", MaxBodySize))
			return nil, false
		}
		a.fail(w, err)
		return nil, false
	}
	return body, true
}

// writeCatalog encodes lifecycles in the configuration document format,
// JSON when the client asks for it and YAML otherwise.
func (a *AdminAPI) writeCatalog(w http.ResponseWriter, r *http.Request, lifecycles []*stub.Lifecycle) {
	encode, contentType := config.Marshal, httputil.ContentTypeYAML
	if httputil.WantsJSON(r) {
		encode, contentType = config.MarshalJSON, httputil.ContentTypeJSON
	}
	out, err := encode(lifecycles)
	if err != nil {
		a.fail(w, err)
		return
	}
	httputil.WriteBody(w, http.StatusOK, contentType, out)
}

// fail converts a handler error into the admin 500 response.
func (a *AdminAPI) fail(w http.ResponseWriter, err error) {
	a.log.Warn("admin request failed", "error", err)
	httputil.WriteText(w, http.StatusInternalServerError, failureMessage(err))
}

func failureMessage(cause any) string {
	return fmt.Sprintf("Problem handling request in Admin handler: %v", cause)
}
