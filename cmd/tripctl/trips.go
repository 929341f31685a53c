package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"roadtrip/internal/canvas"
	"roadtrip/internal/planner"
)

var showCmd = &cobra.Command{
	Use:   "show <trip-id>",
	Short: "Show a saved trip with its route and totals",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := openSession(cmd, args[0])
		if err != nil {
			return err
		}
		printSession(session)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the user's saved trips",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := requireUser()
		if err != nil {
			return err
		}

		gateway := planner.NewPersistenceGateway(newBackend())
		trips, err := gateway.ListTrips(cmd.Context(), userID)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tSTOPS\tCREATED")
		for _, t := range trips {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", t.ID, t.Name, t.StopCount, t.CreatedAt.Format("2006-01-02"))
		}
		return w.Flush()
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <trip-id>",
	Short: "Delete a saved trip",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		gateway := planner.NewPersistenceGateway(newBackend())
		if err := gateway.DeleteTrip(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted trip %s\n", args[0])
		return nil
	},
}

var removeStopCmd = &cobra.Command{
	Use:   "remove-stop <trip-id> <index>",
	Short: "Remove the stop at a 1-based index from a saved trip",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("index %q: %w", args[1], err)
		}

		notices := &planner.NoticeLog{}
		session, err := openSessionWith(cmd, args[0], notices)
		if err != nil {
			return err
		}

		removed, err := session.RemoveStop(cmd.Context(), index-1)
		if err != nil {
			return err
		}
		session.Wait()

		for _, n := range notices.Notices() {
			if n.Source == planner.SourceDeleteStop {
				return fmt.Errorf("stop removed locally but not on the backend: %s", n.Message)
			}
		}

		fmt.Printf("Removed stop %s (%s)\n", removed.ID, removed.Type)
		printSession(session)
		return nil
	},
}

func openSession(cmd *cobra.Command, tripID string) (*planner.Session, error) {
	return openSessionWith(cmd, tripID, nil)
}

func openSessionWith(cmd *cobra.Command, tripID string, notifier planner.Notifier) (*planner.Session, error) {
	routes, err := newRouteService()
	if err != nil {
		return nil, err
	}

	backend := newBackend()
	session := planner.NewSession(canvas.NewRecorder(), routes, backend, planner.NewPersistenceGateway(backend), planner.SessionConfig{
		Notifier: notifier,
		Logger:   newLogger(),
	})
	if err := session.Open(cmd.Context(), tripID); err != nil {
		return nil, err
	}
	session.Wait()
	return session, nil
}

func printSession(session *planner.Session) {
	meta := session.Meta()
	if meta.Name != "" {
		fmt.Printf("%s\n", meta.Name)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STOP\tPOSITION\tCOST\tMINUTES")
	for i, s := range session.Stops() {
		fmt.Fprintf(w, "%s\t%s\t%.2f (%s)\t%d\n", s.Label(i), s.Position, s.Cost, s.CostOrigin, s.TimeMinutes)
	}
	_ = w.Flush()

	t := session.Totals()
	note := ""
	if t.Provisional {
		note = " (route pending)"
	}
	fmt.Printf("Total: $%.2f, %d min, %.1f km%s [%s]\n",
		t.CostTotal, t.TimeMinutes, float64(t.DistanceMeters)/1000, note, session.Status())
}
