package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// methodEntry is one calculation method as listed to the user.
type methodEntry struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CalculationMethods is the fallback list used when the API's /methods
// endpoint cannot be reached.
var CalculationMethods = []methodEntry{
	{0, "Shia Ithna-Ashari (Jafari)"},
	{1, "University of Islamic Sciences, Karachi"},
	{2, "Islamic Society of North America (ISNA)"},
	{3, "Muslim World League (MWL)"},
	{4, "Umm Al-Qura University, Makkah"},
	{5, "Egyptian General Authority of Survey"},
	{7, "Institute of Geophysics, University of Tehran"},
	{8, "Gulf Region"},
	{9, "Kuwait"},
	{10, "Qatar"},
	{11, "Majlis Ugama Islam Singapura (Singapore)"},
	{12, "Union Organization Islamic de France"},
	{13, "Diyanet Isleri Baskanligi, Turkey (experimental)"},
	{14, "Spiritual Administration of Muslims of Russia"},
	{15, "Moonsighting Committee Worldwide"},
	{16, "Dubai (experimental)"},
	{17, "JAKIM (Malaysia)"},
	{18, "Tunisia"},
	{19, "Algeria"},
	{20, "KEMENAG (Indonesia)"},
	{21, "Morocco"},
	{22, "Comunidade Islamica de Lisboa (Portugal)"},
	{23, "Ministry of Awqaf, Jordan"},
}

func newMethodsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "methods",
		Short: "List all calculation methods",
		Long:  "Print the calculation methods the Al Adhan API supports. Falls back to a\nbuilt-in list when the API is unreachable.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			methods := fetchMethods(cmd)
			if FlagJSON {
				return writeJSON(cmd.OutOrStdout(), methods)
			}
			printMethods(cmd.OutOrStdout(), methods)
			return nil
		},
	}
}

// fetchMethods asks the API for its method list, falling back to
// CalculationMethods on any failure. Custom entries (ID 99) are dropped.
func fetchMethods(cmd *cobra.Command) []methodEntry {
	log := zerolog.Ctx(cmd.Context())

	resp, err := newAPIClient().FetchMethods()
	if err != nil {
		log.Warn().Err(err).Msg("method list unavailable, using built-in list")
		return CalculationMethods
	}

	var out []methodEntry
	for _, m := range resp.Data {
		if m.Name == "" || m.ID >= 99 {
			continue
		}
		out = append(out, methodEntry{ID: m.ID, Name: m.Name})
	}
	if len(out) == 0 {
		log.Warn().Msg("API returned no methods, using built-in list")
		return CalculationMethods
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func printMethods(w io.Writer, methods []methodEntry) {
	fmt.Fprintln(w, "Supported calculation methods:")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %-4s %s\n", "ID", "Name")
	fmt.Fprintf(w, "  %-4s %s\n", "──", "────")
	for _, m := range methods {
		fmt.Fprintf(w, "  %-4d %s\n", m.ID, m.Name)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Use --method <ID> to select a calculation method.")
	fmt.Fprintln(w, "If omitted, the API picks a default based on your location.")
}
