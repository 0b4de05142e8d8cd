// Package bot routes chat interactions (slash commands, button clicks, modal
// submissions and guild membership events) to the notes repository, the
// pagination sessions and the server registry.
//
// The chat platform itself stays behind two small seams: inbound events are
// plain structs, and everything shown to users goes through a Responder.
// Clicks by anyone other than a listing's owner are dropped without a reply.
package bot
