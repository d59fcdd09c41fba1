package mongo

import "errors"

var (
	ErrFailedToConnectToMongo = errors.New("failed to connect to mongo")
	ErrHealthcheckFailed      = errors.New("mongo healthcheck failed")
	ErrQueryFailed            = errors.New("mongo query failed")
	ErrIndexCreation          = errors.New("failed to create mongo index")
)
