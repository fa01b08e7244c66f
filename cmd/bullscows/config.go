package main

import (
	"net/http"

	"github.com/kjhallberg/bullscows/accept"
	"github.com/kjhallberg/bullscows/conn"
	"github.com/kjhallberg/bullscows/idler"
	"github.com/kjhallberg/bullscows/lobby"
	"github.com/kjhallberg/bullscows/lobbydir"
	"github.com/kjhallberg/bullscows/match"
	"github.com/kjhallberg/bullscows/protocol"
	"github.com/kjhallberg/bullscows/secret"
	"github.com/kjhallberg/bullscows/server/log"
)

// newServeMux wires the Idler, Lobby, Game and accept collaborators
// together and returns the single handler the HTTP server serves.
// maxLobbies of 0 means unbounded.
func newServeMux(logger log.Logger, maxLobbies int) *http.ServeMux {
	directory := lobbydir.New()
	ids := &protocol.IDGenerator{}

	var idlerCfg idler.Config
	var lobbyCfg lobby.Config
	var matchCfg match.Config

	spawnIdler := func(c conn.Conn, pending conn.PendingRead) {
		idler.Spawn(idlerCfg, c, pending)
	}

	idlerCfg = idler.Config{
		Log:       logger,
		Directory: directory,
		SpawnLobby: func(c conn.Conn) {
			if maxLobbies > 0 && directory.Len() >= maxLobbies {
				logger.Printf("refusing to create lobby: at capacity (%v)", maxLobbies)
				spawnIdler(c, nil)
				return
			}
			lobby.Spawn(lobbyCfg, c)
		},
	}
	lobbyCfg = lobby.Config{
		Log:        logger,
		Directory:  directory,
		IDs:        ids,
		SpawnIdler: spawnIdler,
		SpawnGame: func(hostConn conn.Conn, hostSecret secret.Secret, hostRead conn.PendingRead, guestConn conn.Conn, guestSecret secret.Secret, guestRead conn.PendingRead) {
			match.Spawn(matchCfg, hostConn, hostSecret, hostRead, guestConn, guestSecret, guestRead)
		},
	}
	matchCfg = match.Config{
		Log:        logger,
		SpawnIdler: spawnIdler,
	}
	acceptCfg := accept.Config{
		Log:        logger,
		SpawnIdler: spawnIdler,
	}

	mux := http.NewServeMux()
	mux.Handle("/", acceptCfg.Handler())
	return mux
}
