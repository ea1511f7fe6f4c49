package handlers

import "net/http"

type dashboardResponse struct {
	Name           string `json:"name"`
	TotalEvents    int    `json:"totalEvents"`
	UpcomingEvents int    `json:"upcomingEvents"`
	TodaysEvents   int    `json:"todaysEvents"`
	TotalAttendees int    `json:"totalAttendees"`
}

// HandleDashboard returns aggregate stats for the signed-in owner's events.
func HandleDashboard(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := s.CurrentUserID(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		stats, err := s.GetDB().GetDashboardStats(r.Context(), userID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}

		writeJSON(w, http.StatusOK, dashboardResponse{
			Name:           stats.Name,
			TotalEvents:    stats.TotalEvents,
			UpcomingEvents: stats.UpcomingEvents,
			TodaysEvents:   stats.TodaysEvents,
			TotalAttendees: stats.TotalAttendees,
		})
	}
}
