package cmd

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ldvx/certforge/httpapi"
	"github.com/ldvx/certforge/notify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the JSON HTTP API for CSR and certificate assembly",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "0.0.0.0", "HTTP server host")
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "HTTP server port")
	_ = viper.BindPFlag("serve.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("serve.port", serveCmd.Flags().Lookup("port"))
	rootCmd.AddCommand(serveCmd)
}

// configureMailer installs an httpapi.CertMailer built from the
// "smtp.*" config keys (the config file or CERTFORGE_SMTP_* env vars),
// if smtp.host is set. Certificate notification stays disabled, and
// CertificateRequest.NotifyEmails is silently ignored, when it isn't.
func configureMailer() {
	host := viper.GetString("smtp.host")
	if host == "" {
		return
	}
	port := viper.GetInt("smtp.port")
	if port == 0 {
		port = 587
	}
	from := viper.GetString("smtp.from")

	var opts []notify.Option
	if user := viper.GetString("smtp.user"); user != "" {
		opts = append(opts, notify.WithAuth(user, viper.GetString("smtp.password")))
	}

	httpapi.SetCertMailer(notify.NewMailer(host, port, from, opts...))
	slog.Info("certificate email notification enabled", "smtp_host", host, "smtp_port", port)
}

func runServe(_ *cobra.Command, _ []string) error {
	host := viper.GetString("serve.host")
	port := viper.GetInt("serve.port")

	configureMailer()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/csr", httpapi.HandleCSR)
	mux.HandleFunc("/api/v1/certificate", httpapi.HandleCertificate)
	mux.HandleFunc("/health", httpapi.HandleHealth)

	addr := fmt.Sprintf("%s:%d", host, port)
	slog.Info("starting server", "host", host, "port", port)
	return http.ListenAndServe(addr, mux)
}
