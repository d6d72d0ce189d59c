// Package docs provides generated OpenAPI documentation.
//
// CineMind API
//
//	@title			CineMind API
//	@version		1.0
//	@description	Movie catalog API with AI mood search and AI-assisted metadata drafting.
//
//	@contact.name	API Support
//	@contact.url	https://github.com/cinemind/cinemind
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//
//	@schemes	http https
package docs

//go:generate swag init -g ../docs/doc.go -d ../internal/server/endpoints,../internal/catalog,../internal/users,../internal/prompts -o . --outputTypes go
