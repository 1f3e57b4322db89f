package lifecycle

// Host → renderer notifications.
const (
	NotifyToggleMiniMode = "toggle-mini-mode"
	NotifyAppClosing     = "app-closing"
	NotifyCheckMiniMode  = "check-can-mini-mode"
	NotifyCheckMinimize  = "check-can-minimize"
)

// Renderer → host commands. Commands are fire-and-forget.
const (
	CmdRestoreWindow = "restore-window"
	CmdCloseWindow   = "close-window"
	CmdAllowMiniMode = "allow-mini-mode"
	CmdAllowMinimize = "allow-minimize"
	CmdQuitApp       = "quit-app"
	CmdSetUpdateURL  = "set-update-url"
)

// Renderer → host requests answered with a value.
const (
	ReqSelectFolder       = "select-folder"
	ReqSelectUpdateFolder = "select-update-folder"
	ReqCheckUpdateServer  = "check-update-server"
	ReqSaveCSVAuto        = "save-csv-auto"
)

// Commands lists every command channel the renderer may send on.
// Messages on any other channel never reach the coordinator.
var Commands = []string{
	CmdRestoreWindow,
	CmdCloseWindow,
	CmdAllowMiniMode,
	CmdAllowMinimize,
	CmdQuitApp,
	CmdSetUpdateURL,
}

// IsCommand reports whether name is an allowlisted renderer command.
func IsCommand(name string) bool {
	for _, c := range Commands {
		if c == name {
			return true
		}
	}
	return false
}
