package handlers

import (
	"trip-planner-server/db"
	"trip-planner-server/externals"
	"trip-planner-server/internals"
)

var routeService *externals.RouteService

// InitRouteService wires the shared route service. Called once from main
// after the database is up.
func InitRouteService() {
	routeService = externals.NewRouteService(db.NewRouteCacheDAO(db.GetDB()))
}

func newReconciler() *internals.Reconciler {
	return internals.NewReconciler(
		db.NewEventDAO(db.GetDB()),
		db.NewSegmentDAO(db.GetDB()),
		db.NewTripDAO(db.GetDB()),
		routeService,
	)
}
