package httptransport

import (
	"net/http"

	"github.com/eima40x4c/CampusCard/pkg/platform/httputil"
)

func (h *Handler) handleListFaculties(w http.ResponseWriter, r *http.Request) {
	faculties, err := h.directory.Faculties(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, faculties)
}

func (h *Handler) handleListDepartments(w http.ResponseWriter, r *http.Request) {
	facultyID, ok := idParam(w, r, "facultyID")
	if !ok {
		return
	}
	departments, err := h.directory.Departments(r.Context(), facultyID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, departments)
}

func (h *Handler) handleListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.directory.Students(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, students)
}
