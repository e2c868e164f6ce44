package main

import (
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// dbCmd queries the export run index: runs | unsupported | layers | tiles.
func dbCmd(args []string) {
	fs := flag.NewFlagSet("db", flag.ExitOnError)
	outDir := fs.String("out", "./maps", "export output directory")
	dbPath := fs.String("db", "", "sqlite db path (default: <out>/index/exports.sqlite)")
	runID := fs.String("run", "", "run id (defaults to the latest run)")
	limit := fs.Int("limit", 20, "result limit")
	_ = fs.Parse(args)

	q := "runs"
	if fs.NArg() > 0 {
		q = strings.TrimSpace(fs.Arg(0))
	}

	path := strings.TrimSpace(*dbPath)
	if path == "" {
		path = filepath.Join(*outDir, "index", "exports.sqlite")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	defer db.Close()

	if *limit <= 0 {
		*limit = 20
	}
	if q != "runs" && *runID == "" {
		id, err := latestRun(db)
		if err != nil {
			fmt.Fprintln(os.Stderr, "latest run:", err)
			os.Exit(1)
		}
		if id == "" {
			fmt.Fprintln(os.Stderr, "no exports found")
			os.Exit(2)
		}
		*runID = id
	}

	switch q {
	case "runs":
		rows, err := db.Query(`SELECT run_id,world_id,map_dir,mode,size_exponent,cropped,tiles_total,tiles_done,digest,status,started_at,finished_at FROM exports ORDER BY started_at DESC LIMIT ?`, *limit)
		if err != nil {
			fmt.Fprintln(os.Stderr, "query:", err)
			os.Exit(1)
		}
		defer rows.Close()
		for rows.Next() {
			var r struct {
				RunID        string `json:"run_id"`
				WorldID      string `json:"world_id"`
				MapDir       string `json:"map_dir"`
				Mode         string `json:"mode"`
				SizeExponent int    `json:"size_exponent"`
				Cropped      bool   `json:"cropped"`
				TilesTotal   int    `json:"tiles_total"`
				TilesDone    int    `json:"tiles_done"`
				Digest       string `json:"digest,omitempty"`
				Status       string `json:"status"`
				StartedAt    string `json:"started_at"`
				FinishedAt   string `json:"finished_at"`
			}
			if err := rows.Scan(&r.RunID, &r.WorldID, &r.MapDir, &r.Mode, &r.SizeExponent, &r.Cropped, &r.TilesTotal, &r.TilesDone, &r.Digest, &r.Status, &r.StartedAt, &r.FinishedAt); err != nil {
				fmt.Fprintln(os.Stderr, "scan:", err)
				os.Exit(1)
			}
			printJSON(r)
		}
		exitOnRowsErr(rows)

	case "unsupported":
		rows, err := db.Query(`SELECT material,name,count FROM unsupported_materials WHERE run_id=? ORDER BY count DESC, material`, *runID)
		if err != nil {
			fmt.Fprintln(os.Stderr, "query:", err)
			os.Exit(1)
		}
		defer rows.Close()
		for rows.Next() {
			var r struct {
				RunID    string `json:"run_id"`
				Material int    `json:"material"`
				Name     string `json:"name"`
				Count    int    `json:"count"`
			}
			if err := rows.Scan(&r.Material, &r.Name, &r.Count); err != nil {
				fmt.Fprintln(os.Stderr, "scan:", err)
				os.Exit(1)
			}
			r.RunID = *runID
			printJSON(r)
		}
		exitOnRowsErr(rows)

	case "layers":
		rows, err := db.Query(`SELECT layer_id,name FROM ignored_layers WHERE run_id=? ORDER BY layer_id`, *runID)
		if err != nil {
			fmt.Fprintln(os.Stderr, "query:", err)
			os.Exit(1)
		}
		defer rows.Close()
		for rows.Next() {
			var r struct {
				RunID   string `json:"run_id"`
				LayerID string `json:"layer_id"`
				Name    string `json:"name"`
			}
			if err := rows.Scan(&r.LayerID, &r.Name); err != nil {
				fmt.Fprintln(os.Stderr, "scan:", err)
				os.Exit(1)
			}
			r.RunID = *runID
			printJSON(r)
		}
		exitOnRowsErr(rows)

	case "tiles":
		rows, err := db.Query(`SELECT seq,tile_x,tile_y,missing,micros,cells_json FROM tiles WHERE run_id=? ORDER BY seq LIMIT ?`, *runID, *limit)
		if err != nil {
			fmt.Fprintln(os.Stderr, "query:", err)
			os.Exit(1)
		}
		defer rows.Close()
		for rows.Next() {
			var (
				r struct {
					RunID   string          `json:"run_id"`
					Seq     int             `json:"seq"`
					TileX   int             `json:"tile_x"`
					TileY   int             `json:"tile_y"`
					Missing bool            `json:"missing"`
					Micros  int64           `json:"micros"`
					Cells   json.RawMessage `json:"cells"`
				}
				cells string
			)
			if err := rows.Scan(&r.Seq, &r.TileX, &r.TileY, &r.Missing, &r.Micros, &cells); err != nil {
				fmt.Fprintln(os.Stderr, "scan:", err)
				os.Exit(1)
			}
			r.RunID = *runID
			r.Cells = json.RawMessage(cells)
			printJSON(r)
		}
		exitOnRowsErr(rows)

	default:
		fmt.Fprintln(os.Stderr, "unknown query:", q)
		os.Exit(2)
	}
}

func latestRun(db *sql.DB) (string, error) {
	var id sql.NullString
	if err := db.QueryRow(`SELECT run_id FROM exports ORDER BY started_at DESC LIMIT 1`).Scan(&id); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", err
	}
	return id.String, nil
}

func exitOnRowsErr(rows *sql.Rows) {
	if err := rows.Err(); err != nil {
		fmt.Fprintln(os.Stderr, "rows:", err)
		os.Exit(1)
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
