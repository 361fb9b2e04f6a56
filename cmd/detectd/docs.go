package main

// General API documentation for swaggo. Run `swag init -g cmd/detectd/docs.go`
// to regenerate the docs package.
//
// @title           detectd API
// @version         1.0
// @description     Object detection over HTTP backed by a frozen detection graph.
//
// @contact.name   detectd maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
