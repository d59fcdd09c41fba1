// Package credentials loads the third-party secrets the API needs at
// startup: the payment provider keys and the Twitch OAuth application.
//
// In local mode (STAGE=local or IS_OFFLINE=true) values are read from the
// environment. Otherwise they are read with decryption from SSM Parameter
// Store:
//
//	/masky/<stage>/stripe_secret_key
//	/masky/<stage>/stripe_webhook_secret
//	/masky/<stage>/twitch_client_id
//	/masky/<stage>/twitch_client_secret
//
// A Loader is constructed once and passed to the components that need it.
// Each bundle is fetched at most once successfully; later calls are served
// from memory.
package credentials
