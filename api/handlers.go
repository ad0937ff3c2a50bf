package api

import (
	"time"

	"github.com/myaicommunity/agenthub/auth"
	"github.com/myaicommunity/agenthub/database"
	"github.com/myaicommunity/agenthub/storage"
)

// initializeHandlers creates all the handlers needed for the routes
func initializeHandlers(db database.Database, issuer auth.TokenIssuer, files storage.FileStore, maxUpload int64, startupTime time.Time) *routeHandlers {
	return &routeHandlers{
		healthHandler:  newHealthHandler(startupTime),
		authHandler:    newAuthHandler(issuer, db.UserRepo()),
		projectHandler: newProjectHandler(db.ProjectRepo(), files, maxUpload),
	}
}
