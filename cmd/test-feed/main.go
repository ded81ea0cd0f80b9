// Command test-feed serves a synthetic ESPN-shaped scoreboard on a local
// port, for pointing the espn results source at fake tournament days:
//
//	test-feed -addr :9090 -games 8 -seed 42
//	PICKX_ESPN_URL=http://localhost:9090/ pickx
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/guttman/pickx/internal/feedsim"
)

func main() {
	addr := flag.String("addr", ":9090", "listen address")
	games := flag.Int("games", 8, "games per generated day")
	seed := flag.Int64("seed", 0, "rng seed; 0 means random")
	inProgress := flag.Float64("in-progress", 0.2, "fraction of games left unfinished")
	flag.Parse()

	opts := []feedsim.Option{feedsim.WithInProgressRatio(*inProgress)}
	if *seed != 0 {
		opts = append(opts, feedsim.WithSeed(*seed))
	}
	gen := feedsim.NewGenerator(opts...)

	handler := feedsim.NewHandler(gen.Day(*games))
	srv := &http.Server{
		Addr:              *addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	fmt.Printf("serving synthetic scoreboard on %s\n", *addr)
	if err := srv.ListenAndServe(); err != nil {
		os.Stderr.WriteString("test-feed failed: " + err.Error() + "\n")
	}
}
