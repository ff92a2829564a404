package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type client struct {
	BaseURL   string
	Token     string // bearer token de sesión
	OutFormat string // "json" | "text"
	HTTP      *http.Client
}

func (c *client) do(method, path string, body []byte) (int, []byte, error) {
	url := strings.TrimRight(c.BaseURL, "/") + path
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b, nil
}

func (c *client) print(status int, body []byte) {
	if c.OutFormat == "json" {
		var v any
		if json.Unmarshal(body, &v) == nil {
			p, _ := json.MarshalIndent(v, "", "  ")
			fmt.Println(string(p))
			return
		}
	}
	if len(body) > 0 {
		fmt.Println(string(body))
	} else {
		fmt.Printf("status=%d\n", status)
	}
}

func main() {
	var (
		baseURL = envOr("STOCKLINK_URL", "http://localhost:8080")
		token   = envOr("STOCKLINK_TOKEN", "")
		out     = envOr("STOCKLINK_OUT", "text")
		timeout = 30 * time.Second
	)

	root := &cobra.Command{
		Use:   "stocklink",
		Short: "CLI para operar membresías contra el servicio",
	}

	root.PersistentFlags().StringVar(&baseURL, "url", baseURL, "URL base del servicio (env STOCKLINK_URL)")
	root.PersistentFlags().StringVar(&token, "token", token, "Access token de sesión (env STOCKLINK_TOKEN)")
	root.PersistentFlags().StringVar(&out, "out", out, "Formato de salida: json|text")

	httpClient := &http.Client{Timeout: timeout}
	cl := &client{BaseURL: baseURL, Token: token, OutFormat: out, HTTP: httpClient}

	requireToken := func(cmd *cobra.Command, args []string) error {
		cl.BaseURL, cl.Token, cl.OutFormat = baseURL, token, out
		if cl.Token == "" {
			return fmt.Errorf("falta el token de sesión (flag --token o env STOCKLINK_TOKEN)")
		}
		return nil
	}

	// login
	var loginEmail, loginPassword string
	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Iniciar sesión con credenciales de la tienda",
		RunE: func(cmd *cobra.Command, args []string) error {
			cl.BaseURL, cl.OutFormat = baseURL, out
			if loginEmail == "" || loginPassword == "" {
				return fmt.Errorf("--email y --password son requeridos")
			}
			b, _ := json.Marshal(map[string]string{"email": loginEmail, "password": loginPassword})
			status, body, err := cl.do("POST", "/v2/auth/shopify/login", b)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("login falló: status=%d body=%s", status, string(body))
			}
			cl.print(status, body)
			return nil
		},
	}
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Email del cliente")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Password del cliente")

	// invite
	var invCompany, invEmail, invRole, invNotes string
	inviteCmd := &cobra.Command{
		Use:     "invite",
		Short:   "Invitar un usuario a una empresa",
		PreRunE: requireToken,
		RunE: func(cmd *cobra.Command, args []string) error {
			if invCompany == "" || invEmail == "" || invRole == "" {
				return fmt.Errorf("--company, --email y --role son requeridos")
			}
			b, _ := json.Marshal(map[string]string{
				"companyId": invCompany,
				"email":     invEmail,
				"role":      invRole,
				"notes":     invNotes,
			})
			status, body, err := cl.do("POST", "/v2/companies/invite", b)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("invite falló: status=%d body=%s", status, string(body))
			}
			cl.print(status, body)
			return nil
		},
	}
	inviteCmd.Flags().StringVar(&invCompany, "company", "", "ID de la empresa")
	inviteCmd.Flags().StringVar(&invEmail, "email", "", "Email del invitado")
	inviteCmd.Flags().StringVar(&invRole, "role", "", "Rol: owner|admin|employee|viewer")
	inviteCmd.Flags().StringVar(&invNotes, "notes", "", "Notas (opcional)")

	// join-code create
	var jcCompany, jcRole, jcExpires string
	var jcMaxUses int
	jcCreateCmd := &cobra.Command{
		Use:     "create",
		Short:   "Emitir un join code (se muestra una sola vez)",
		PreRunE: requireToken,
		RunE: func(cmd *cobra.Command, args []string) error {
			if jcCompany == "" || jcRole == "" {
				return fmt.Errorf("--company y --role son requeridos")
			}
			payload := map[string]any{"companyId": jcCompany, "role": jcRole}
			if jcMaxUses > 0 {
				payload["maxUses"] = jcMaxUses
			}
			if jcExpires != "" {
				payload["expiresIn"] = jcExpires
			}
			b, _ := json.Marshal(payload)
			status, body, err := cl.do("POST", "/v2/companies/join-codes", b)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("create falló: status=%d body=%s", status, string(body))
			}
			cl.print(status, body)
			return nil
		},
	}
	jcCreateCmd.Flags().StringVar(&jcCompany, "company", "", "ID de la empresa")
	jcCreateCmd.Flags().StringVar(&jcRole, "role", "", "Rol a otorgar")
	jcCreateCmd.Flags().IntVar(&jcMaxUses, "max-uses", 0, "Máximo de usos (0 = ilimitado)")
	jcCreateCmd.Flags().StringVar(&jcExpires, "expires-in", "", "Vigencia como duración Go (ej. 24h)")

	// join-code redeem
	var jcCode string
	jcRedeemCmd := &cobra.Command{
		Use:     "redeem",
		Short:   "Canjear un join code",
		PreRunE: requireToken,
		RunE: func(cmd *cobra.Command, args []string) error {
			if jcCode == "" {
				return fmt.Errorf("--code es requerido")
			}
			b, _ := json.Marshal(map[string]string{"code": jcCode})
			status, body, err := cl.do("POST", "/v2/companies/join-code", b)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("redeem falló: status=%d body=%s", status, string(body))
			}
			cl.print(status, body)
			return nil
		},
	}
	jcRedeemCmd.Flags().StringVar(&jcCode, "code", "", "Código a canjear")

	// join-code revoke
	var jcRevokeCompany, jcRevokeID string
	jcRevokeCmd := &cobra.Command{
		Use:     "revoke",
		Short:   "Revocar un join code",
		PreRunE: requireToken,
		RunE: func(cmd *cobra.Command, args []string) error {
			if jcRevokeCompany == "" || jcRevokeID == "" {
				return fmt.Errorf("--company y --id son requeridos")
			}
			path := "/v2/companies/join-codes/" + jcRevokeID + "?companyId=" + jcRevokeCompany
			status, body, err := cl.do("DELETE", path, nil)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("revoke falló: status=%d body=%s", status, string(body))
			}
			cl.print(status, body)
			return nil
		},
	}
	jcRevokeCmd.Flags().StringVar(&jcRevokeCompany, "company", "", "ID de la empresa")
	jcRevokeCmd.Flags().StringVar(&jcRevokeID, "id", "", "ID del código")

	joinCodeCmd := &cobra.Command{Use: "join-code", Short: "Operaciones sobre join codes"}
	joinCodeCmd.AddCommand(jcCreateCmd, jcRedeemCmd, jcRevokeCmd)

	root.AddCommand(loginCmd, inviteCmd, joinCodeCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
