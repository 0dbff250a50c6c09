package shared

// The webhelper only answers requests that look like they came from the
// embedded web player, so these values are part of the protocol rather than
// something worth configuring.
const (
	USER_AGENT = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:50.0) Gecko/20100101 Firefox/50.0"
	ORIGIN     = "https://embed.spotify.com"
	REFERER    = "https://embed.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC"

	TOKEN_URL = "https://open.spotify.com/token"
	LOCAL_URL = "http://localhost.spotilocal.com"

	LOOPBACK_HOST = "127.0.0.1"
	PORT_START    = 4370
	PORT_END      = 4399

	PATH_CSRF   = "simplecsrf/token.json"
	PATH_STATUS = "remote/status.json"
	PATH_PLAY   = "remote/play.json"
	PATH_PAUSE  = "remote/pause.json"
	PATH_OPEN   = "remote/open.json"

	PROCESS_CLIENT           = "Spotify.exe"
	PROCESS_CLIENT_UNIX      = "Spotify"
	PROCESS_WEBHELPER        = "SpotifyWebHelper.exe"
	SOURCE_SPOTIFY           = "spotify"
	CATEGORY_TRACK           = "track"
	SERVICE_USER_AGENT       = "Spotilocal/1.0 <github.com/marcus-crane/spotilocal>"
	DEFAULT_POLL_INTERVAL_MS = 250
)
