package main

import (
	"github.com/Cholifbima/Pemweb-Project-Besar-sub001/server"
)

func main() {
	s := server.NewServer()
	s.Start(s.Config.Server.Addr)
}
