package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"text/tabwriter"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "tenant":
		handleTenant(args)
	case "auth":
		handleAuth(args)
	case "asset":
		handleAsset(args)
	case "report":
		downloadReport(args)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func handleTenant(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: inventario tenant <register>")
		return
	}

	switch args[0] {
	case "register":
		registerTenant(args[1:])
	default:
		fmt.Printf("unknown tenant command: %s\n", args[0])
	}
}

func handleAuth(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: inventario auth <login|logout|who>")
		return
	}

	switch args[0] {
	case "login":
		login(args[1:])
	case "logout":
		logout()
	case "who":
		whoAmI()
	default:
		fmt.Printf("unknown auth command: %s\n", args[0])
	}
}

func handleAsset(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: inventario asset <list|create|delete>")
		return
	}

	switch args[0] {
	case "list":
		listAssets(args[1:])
	case "create":
		createAsset(args[1:])
	case "delete":
		deleteAsset(args[1:])
	default:
		fmt.Printf("unknown asset command: %s\n", args[0])
	}
}

// Tenant commands
func registerTenant(args []string) {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	id := fs.String("id", "", "tenant id (CIE code)")
	name := fs.String("name", "", "school name")
	phrase := fs.String("phrase", "", "recovery phrase")
	login := fs.String("login", "", "admin login")
	password := fs.String("password", "", "admin password")
	adminName := fs.String("admin-name", "", "admin display name")
	role := fs.String("role", "PROATI", "admin role")

	fs.Parse(args)

	if *id == "" || *name == "" || *phrase == "" || *login == "" || *password == "" || *adminName == "" {
		fmt.Println("Error: id, name, phrase, login, password, and admin-name are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{
		"tenantId":       *id,
		"name":           *name,
		"recoveryPhrase": *phrase,
		"adminLogin":     *login,
		"adminPassword":  *password,
		"adminName":      *adminName,
		"adminRole":      *role,
	}

	data, _ := json.Marshal(payload)
	resp, err := http.Post(getAPIURL()+"/tenants", "application/json", bytes.NewReader(data))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 201 {
		fmt.Printf("✓ Tenant registered: %s\n", *id)
	} else {
		fmt.Printf("✗ Registration failed: %v\n", result)
	}
}

// Auth commands
func login(args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	tenant := fs.String("tenant", "", "tenant id (CIE code)")
	user := fs.String("login", "", "account login")
	password := fs.String("password", "", "password")

	fs.Parse(args)

	if *tenant == "" || *user == "" || *password == "" {
		fmt.Println("Error: tenant, login, and password are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{"tenantId": *tenant, "login": *user, "password": *password}
	data, _ := json.Marshal(payload)
	resp, err := http.Post(getAPIURL()+"/login", "application/json", bytes.NewReader(data))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 200 {
		if token, ok := result["token"].(string); ok {
			saveToken(token)
			fmt.Printf("✓ Logged in as: %s@%s\n", *user, *tenant)
			return
		}
	}
	fmt.Printf("✗ Login failed: %v\n", result)
}

func logout() {
	os.Remove(tokenFile())
	fmt.Println("✓ Logged out")
}

func whoAmI() {
	token := loadToken()
	if token == "" {
		fmt.Println("Not logged in")
		return
	}
	fmt.Printf("✓ Logged in (token: %s...)\n", token[:20])
}

// Asset commands
func listAssets(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	filter := fs.String("filter", "", "keep only records containing this text")

	fs.Parse(args)

	listURL := getAPIURL() + "/assets"
	if *filter != "" {
		listURL += "?q=" + url.QueryEscape(*filter)
	}

	req, _ := http.NewRequest("GET", listURL, nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		var result map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&result)
		fmt.Printf("✗ List failed: %v\n", result)
		return
	}

	var body struct {
		Assets []map[string]interface{} `json:"assets"`
	}
	json.NewDecoder(resp.Body).Decode(&body)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SERIAL\tTYPE\tMODEL\tSTATUS\tCREATED\tAUTHOR")
	for _, a := range body.Assets {
		fmt.Fprintf(w, "%v\t%v\t%v\t%v\t%v\t%v\n",
			a["serial"], a["type"], a["model"], a["status"], a["createdAt"], a["author"])
	}
	w.Flush()
}

func createAsset(args []string) {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	assetType := fs.String("type", "", "equipment type")
	model := fs.String("model", "", "model name")
	serial := fs.String("serial", "", "serial number")
	tag := fs.String("tag", "", "property tag")
	invoice := fs.String("invoice", "", "invoice number")
	status := fs.String("status", "Operacional", "status")
	problem := fs.String("problem", "", "problem description")

	fs.Parse(args)

	if *assetType == "" || *serial == "" {
		fmt.Println("Error: type and serial are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{
		"type":        *assetType,
		"model":       *model,
		"serial":      *serial,
		"propertyTag": *tag,
		"invoice":     *invoice,
		"status":      *status,
		"problem":     *problem,
	}
	data, _ := json.Marshal(payload)
	req, _ := http.NewRequest("POST", getAPIURL()+"/assets", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 201 {
		fmt.Printf("✓ Asset created: %s\n", *serial)
	} else {
		fmt.Printf("✗ Create failed: %v\n", result)
	}
}

func deleteAsset(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: inventario asset delete <serial>")
		return
	}

	req, _ := http.NewRequest("DELETE", getAPIURL()+"/assets/"+url.PathEscape(args[0]), nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == 200 {
		fmt.Printf("✓ Asset deleted: %s\n", args[0])
	} else {
		var result map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&result)
		fmt.Printf("✗ Delete failed: %v\n", result)
	}
}

// Report command
func downloadReport(args []string) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	out := fs.String("out", "relatorio.pdf", "output file")
	filter := fs.String("filter", "", "keep only records containing this text")

	fs.Parse(args)

	reportURL := getAPIURL() + "/report"
	if *filter != "" {
		reportURL += "?q=" + url.QueryEscape(*filter)
	}

	req, _ := http.NewRequest("GET", reportURL, nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		var result map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&result)
		fmt.Printf("✗ Report failed: %v\n", result)
		return
	}

	f, err := os.Create(*out)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("✓ Report saved: %s\n", *out)
}

// Helper functions
func getAPIURL() string {
	if url := os.Getenv("INVENTARIO_API"); url != "" {
		return url
	}
	return "http://localhost:8080/api"
}

func tokenFile() string {
	home, _ := os.UserHomeDir()
	return home + "/.inventario/token"
}

func saveToken(token string) error {
	home, _ := os.UserHomeDir()
	os.MkdirAll(home+"/.inventario", 0700)
	return os.WriteFile(tokenFile(), []byte(token), 0600)
}

func loadToken() string {
	data, _ := os.ReadFile(tokenFile())
	return string(data)
}

func addAuthHeader(req *http.Request) {
	token := loadToken()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func printUsage() {
	fmt.Print(`Inventario CLI

Usage:
  inventario <command> [options]

Commands:
  tenant   Tenant operations (register)
  auth     Authentication (login, logout, who)
  asset    Asset operations (list, create, delete)
  report   Download the inventory report as PDF
  help     Show this help message

Environment Variables:
  INVENTARIO_API    API endpoint (default: http://localhost:8080/api)

Examples:
  inventario tenant register -id 001 -name "EE Central" -phrase "abre-te" -login root -password s3cret -admin-name "Maria" -role Diretor
  inventario auth login -tenant 001 -login root -password s3cret
  inventario asset create -type Chromebook -serial SN-1 -model "Samsung XE501"
  inventario asset list -filter Chromebook
  inventario report -out inventario.pdf
`)
}
