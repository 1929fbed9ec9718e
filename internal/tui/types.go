package tui

import (
	"github.com/fentz26/breakroom/internal/models"
)

// Reply is the daemon's answer to one message.
type Reply struct {
	models.Result
	Reply string `json:"reply"`
}

type snapshotLoadedMsg struct {
	snap models.Snapshot
}

type absencesLoadedMsg struct {
	absences []models.Absence
}

type replyMsg struct {
	text  string
	reply *Reply
}

type daemonStatusMsg struct {
	online bool
}

type commandResultMsg struct {
	message string
}

type tickMsg struct{}

type errMsg struct {
	err error
}
