// @title           StudyHub API
// @version         1.0
// @description     Учебный портал: материалы по курсам и семестрам, подписка через Razorpay.
// @host            localhost:8080
// @BasePath        /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"os"

	"studyhub_backend/internal/cli"

	_ "studyhub_backend/docs"
)

var version = "dev"

func main() {
	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
