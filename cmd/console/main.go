package main // Interactive terminal front end over the same repositories as the API

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/GabeGiancarlo/rideshare-app/internal/config"
	"github.com/GabeGiancarlo/rideshare-app/internal/database"
	"github.com/GabeGiancarlo/rideshare-app/internal/model"
	"github.com/GabeGiancarlo/rideshare-app/internal/repository"
	"github.com/GabeGiancarlo/rideshare-app/internal/utils"
)

// console holds the repositories plus the logged-in session state.
// Exactly one of rider/driver is non-zero while a session is open.
type console struct {
	in      *bufio.Scanner
	cfg     config.Config
	users   *repository.UserRepo
	riders  *repository.RiderRepo
	drivers *repository.DriverRepo
	rides   *repository.RideRepo

	user   model.User
	rider  model.Rider
	driver model.Driver
}

func main() {
	cfg := config.Load()

	pass := database.ResolvePassword(cfg.DBPass, cfg.DBUser)
	db, err := database.Open(cfg.DBUser, pass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Migrate(ctx, db); err != nil {
		cancel()
		log.Fatalf("migrate: %v", err)
	}
	cancel()

	app := &console{
		in:      bufio.NewScanner(os.Stdin),
		cfg:     cfg,
		users:   repository.NewUserRepo(db),
		riders:  repository.NewRiderRepo(db),
		drivers: repository.NewDriverRepo(db),
		rides:   repository.NewRideRepo(db),
	}
	app.run()
}

func (a *console) run() {
	fmt.Println("\nWelcome to the Rideshare Application!")
	for {
		fmt.Println("\n=== RIDESHARE APPLICATION ===")
		fmt.Println("1. New Account")
		fmt.Println("2. Existing Rider Login")
		fmt.Println("3. Existing Driver Login")
		fmt.Println("4. Exit")

		switch a.prompt("\nEnter your choice (1-4): ") {
		case "1":
			a.newAccount()
		case "2":
			a.riderLogin()
		case "3":
			a.driverLogin()
		case "4":
			fmt.Println("\nThank you for using the Rideshare Application!")
			return
		default:
			fmt.Println("Invalid choice. Please enter 1-4.")
		}
	}
}

// ----- account creation -----

func (a *console) newAccount() {
	fmt.Println("\n--- Create New Account ---")
	fmt.Println("1. Rider Account")
	fmt.Println("2. Driver Account")
	fmt.Println("3. Cancel")
	choice := a.prompt("\nEnter your choice (1-3): ")
	if choice == "3" {
		return
	}
	if choice != "1" && choice != "2" {
		fmt.Println("Invalid choice.")
		return
	}

	username := a.prompt("Enter username: ")
	if username == "" {
		fmt.Println("Username cannot be empty.")
		return
	}
	password := a.prompt("Enter password: ")
	if password == "" {
		fmt.Println("Password cannot be empty.")
		return
	}
	email := a.prompt("Enter email: ")
	if !utils.ValidEmail(email) {
		fmt.Println("Invalid email format.")
		return
	}
	fullName := a.prompt("Enter full name: ")
	if fullName == "" {
		fmt.Println("Full name cannot be empty.")
		return
	}
	phone := a.prompt("Enter phone number (optional): ")
	if !utils.ValidPhone(phone) {
		fmt.Println("Invalid phone number format.")
		return
	}

	var err error
	if choice == "1" {
		p := repository.RiderProfile{
			PaymentInfo:      a.prompt("Enter payment information (optional): "),
			PreferredPayment: a.prompt("Enter preferred payment method (optional): "),
			CreditCardLast4:  a.prompt("Enter last 4 digits of credit card (optional): "),
			DefaultLocation:  a.prompt("Enter default location (optional): "),
		}
		ctx, cancel := opCtx()
		defer cancel()
		_, err = a.riders.Register(ctx, username, password, email, phone, fullName, a.cfg.BcryptCost, p)
	} else {
		p := repository.DriverProfile{LicenseNumber: a.prompt("Enter license number: ")}
		if p.LicenseNumber == "" {
			fmt.Println("License number is required.")
			return
		}
		p.LicenseExpiry = a.prompt("Enter license expiry date (YYYY-MM-DD, optional): ")
		p.VehicleMake = a.prompt("Enter vehicle make (optional): ")
		p.VehicleModel = a.prompt("Enter vehicle model (optional): ")
		if y := a.prompt("Enter vehicle year (optional): "); y != "" {
			n, convErr := strconv.Atoi(y)
			if convErr != nil {
				fmt.Println("Invalid year format.")
				return
			}
			p.VehicleYear = n
		}
		p.VehicleColor = a.prompt("Enter vehicle color (optional): ")
		p.LicensePlate = a.prompt("Enter license plate (optional): ")
		p.InsuranceNumber = a.prompt("Enter insurance number (optional): ")
		ctx, cancel := opCtx()
		defer cancel()
		_, err = a.drivers.Register(ctx, username, password, email, phone, fullName, a.cfg.BcryptCost, p)
	}

	switch {
	case errors.Is(err, repository.ErrUsernameExists):
		fmt.Println("Username already exists. Please choose another.")
	case err != nil:
		fmt.Printf("Failed to create account: %v\n", err)
	default:
		fmt.Println("\nAccount created successfully! You can now log in.")
	}
}

// ----- login -----

func (a *console) login() (model.User, bool) {
	username := a.prompt("Enter username: ")
	password := a.prompt("Enter password: ")

	ctx, cancel := opCtx()
	defer cancel()

	u, err := a.users.Authenticate(ctx, username, password)
	if err != nil {
		fmt.Println("Invalid username or password.")
		return model.User{}, false
	}
	return u, true
}

func (a *console) riderLogin() {
	fmt.Println("\n--- Rider Login ---")
	u, ok := a.login()
	if !ok {
		return
	}
	ctx, cancel := opCtx()
	rd, err := a.riders.GetByUserID(ctx, u.ID)
	cancel()
	if err != nil {
		fmt.Println("No rider profile found for this user.")
		return
	}
	a.user, a.rider = u, rd
	fmt.Printf("\nLogin successful! Welcome, %s.\n", u.FullName)
	a.riderMenu()
	a.user, a.rider = model.User{}, model.Rider{}
}

func (a *console) driverLogin() {
	fmt.Println("\n--- Driver Login ---")
	u, ok := a.login()
	if !ok {
		return
	}
	ctx, cancel := opCtx()
	d, err := a.drivers.GetByUserID(ctx, u.ID)
	cancel()
	if err != nil {
		fmt.Println("No driver profile found for this user.")
		return
	}
	a.user, a.driver = u, d
	fmt.Printf("\nLogin successful! Welcome, %s (mode: %s).\n", u.FullName, d.Mode)
	a.driverMenu()
	a.user, a.driver = model.User{}, model.Driver{}
}

// ----- driver menu -----

func (a *console) driverMenu() {
	for {
		fmt.Println("\n=== DRIVER MENU ===")
		fmt.Println("1. View Rating")
		fmt.Println("2. View Rides")
		fmt.Println("3. Activate/Deactivate Driver Mode")
		fmt.Println("4. Logout")

		switch a.prompt("\nEnter your choice (1-4): ") {
		case "1":
			a.driverRating()
		case "2":
			a.driverRides()
		case "3":
			a.driverToggle()
		case "4":
			fmt.Println("\nLogged out successfully.")
			return
		default:
			fmt.Println("Invalid choice. Please enter 1-4.")
		}
	}
}

func (a *console) driverRating() {
	ctx, cancel := opCtx()
	defer cancel()
	avg, err := a.drivers.GetRating(ctx, a.driver.ID)
	if errors.Is(err, repository.ErrNotFound) {
		fmt.Println("No ratings yet.")
		return
	}
	if err != nil {
		fmt.Printf("Failed to load rating: %v\n", err)
		return
	}
	fmt.Printf("Average rating: %.2f / 5\n", avg)
}

func (a *console) driverRides() {
	ctx, cancel := opCtx()
	defer cancel()
	rides, err := a.drivers.ListRides(ctx, a.driver.ID)
	if err != nil {
		fmt.Printf("Failed to load rides: %v\n", err)
		return
	}
	if len(rides) == 0 {
		fmt.Println("No rides found.")
		return
	}
	fmt.Printf("\nTotal rides: %d\n", len(rides))
	for _, r := range rides {
		fmt.Printf("  #%d  %s -> %s  [%s]  rider: %s%s\n",
			r.ID, r.PickupLocation, r.DropoffLocation, r.Status, r.RiderName, rideExtras(r.Ride))
	}
}

func (a *console) driverToggle() {
	fmt.Printf("Current mode: %s\n", strings.ToUpper(a.driver.Mode))
	next := model.ModeActive
	if a.driver.Mode == model.ModeActive {
		next = model.ModeInactive
	}
	if !a.confirm(fmt.Sprintf("Switch to %s mode?", strings.ToUpper(next))) {
		fmt.Println("Mode change cancelled.")
		return
	}
	ctx, cancel := opCtx()
	defer cancel()
	mode, err := a.drivers.ToggleMode(ctx, a.driver.ID)
	if err != nil {
		fmt.Printf("Failed to update driver mode: %v\n", err)
		return
	}
	a.driver.Mode = mode
	fmt.Printf("\nDriver mode changed to %s.\n", strings.ToUpper(mode))
}

// ----- rider menu -----

func (a *console) riderMenu() {
	for {
		fmt.Println("\n=== RIDER MENU ===")
		fmt.Println("1. View Rides")
		fmt.Println("2. Find a Driver")
		fmt.Println("3. Rate My Driver")
		fmt.Println("4. Logout")

		switch a.prompt("\nEnter your choice (1-4): ") {
		case "1":
			a.riderRides()
		case "2":
			a.riderFindDriver()
		case "3":
			a.riderRate()
		case "4":
			fmt.Println("\nLogged out successfully.")
			return
		default:
			fmt.Println("Invalid choice. Please enter 1-4.")
		}
	}
}

func (a *console) riderRides() {
	ctx, cancel := opCtx()
	defer cancel()
	rides, err := a.riders.ListRides(ctx, a.rider.ID)
	if err != nil {
		fmt.Printf("Failed to load rides: %v\n", err)
		return
	}
	if len(rides) == 0 {
		fmt.Println("No rides found.")
		return
	}
	fmt.Printf("\nTotal rides: %d\n", len(rides))
	for _, r := range rides {
		fmt.Printf("  #%d  %s -> %s  [%s]  driver: %s%s\n",
			r.ID, r.PickupLocation, r.DropoffLocation, r.Status, r.DriverName, rideExtras(r.Ride))
	}
}

func (a *console) riderFindDriver() {
	ctx, cancel := opCtx()
	d, err := a.drivers.GetActive(ctx)
	cancel()
	if errors.Is(err, repository.ErrNoActiveDriver) {
		fmt.Println("No active drivers available at the moment.")
		fmt.Println("Please try again later.")
		return
	}
	if err != nil {
		fmt.Printf("Driver lookup failed: %v\n", err)
		return
	}
	fmt.Printf("\nFound driver: %s %s\n", orNA(d.VehicleMake), orNA(d.VehicleModel))

	req := repository.RideRequest{PickupLocation: a.prompt("\nEnter pickup location: ")}
	if req.PickupLocation == "" {
		fmt.Println("Pickup location is required.")
		return
	}
	req.PickupAddress = a.prompt("Enter pickup address (optional): ")
	req.DropoffLocation = a.prompt("Enter dropoff location: ")
	if req.DropoffLocation == "" {
		fmt.Println("Dropoff location is required.")
		return
	}
	req.DropoffAddress = a.prompt("Enter dropoff address (optional): ")
	if f := a.prompt("Enter fare amount (optional): "); f != "" {
		fare, convErr := strconv.ParseFloat(f, 64)
		if convErr != nil || fare < 0 {
			fmt.Println("Invalid fare amount. Proceeding without fare.")
		} else {
			req.FareAmount = fare
		}
	}

	ctx, cancel = opCtx()
	defer cancel()
	rideID, err := a.rides.Create(ctx, d.ID, a.rider.ID, req)
	if err != nil {
		fmt.Printf("Failed to create ride: %v\n", err)
		return
	}
	fmt.Printf("\nRide #%d created successfully! Status: pending.\n", rideID)
}

func (a *console) riderRate() {
	ctx, cancel := opCtx()
	recent, err := a.riders.MostRecentRide(ctx, a.rider.ID)
	cancel()
	if errors.Is(err, repository.ErrNotFound) {
		fmt.Println("No rides found. You need to take a ride before you can rate.")
		return
	}
	if err != nil {
		fmt.Printf("Failed to load rides: %v\n", err)
		return
	}

	fmt.Printf("\nMost recent ride: #%d  %s -> %s  driver: %s\n",
		recent.ID, recent.PickupLocation, recent.DropoffLocation, recent.DriverName)

	rideID := recent.ID
	useRecent := true
	if recent.Rating != nil {
		fmt.Printf("This ride has already been rated: %d/5\n", *recent.Rating)
		if !a.confirm("Rate a different ride?") {
			return
		}
		useRecent = false
	} else if !a.confirm("Is this the ride you want to rate?") {
		useRecent = false
	}

	if !useRecent {
		id, convErr := strconv.ParseUint(a.prompt("Enter the ride ID you want to rate: "), 10, 64)
		if convErr != nil {
			fmt.Println("Invalid ride ID.")
			return
		}
		ctx, cancel := opCtx()
		ride, err := a.rides.GetByIDForRider(ctx, id, a.rider.ID)
		cancel()
		if err != nil {
			fmt.Println("Ride not found or does not belong to you.")
			return
		}
		if ride.Rating != nil {
			fmt.Printf("This ride has already been rated: %d/5\n", *ride.Rating)
			if !a.confirm("Update the rating?") {
				return
			}
		}
		rideID = id
	}

	var rating int
	for {
		n, ok := utils.ParseRating(a.prompt("\nEnter rating (1-5): "))
		if ok {
			rating = n
			break
		}
		fmt.Println("Invalid rating. Please enter a number between 1 and 5.")
	}
	comment := a.prompt("Enter rating comment (optional): ")

	ctx, cancel = opCtx()
	defer cancel()
	if err := a.rides.UpdateRating(ctx, rideID, a.rider.ID, rating, comment); err != nil {
		fmt.Printf("Failed to submit rating: %v\n", err)
		return
	}
	fmt.Println("\nRating submitted successfully!")
}

// ----- small helpers -----

func (a *console) prompt(label string) string {
	fmt.Print(label)
	if !a.in.Scan() {
		return ""
	}
	return strings.TrimSpace(a.in.Text())
}

func (a *console) confirm(question string) bool {
	ans := strings.ToLower(a.prompt(question + " (y/n): "))
	return ans == "y" || ans == "yes"
}

func rideExtras(r model.Ride) string {
	var b strings.Builder
	if r.FareAmount != nil {
		fmt.Fprintf(&b, "  fare: $%.2f", *r.FareAmount)
	}
	if r.Rating != nil {
		fmt.Fprintf(&b, "  rating: %d/5", *r.Rating)
	}
	return b.String()
}

func orNA(s *string) string {
	if s == nil || *s == "" {
		return "N/A"
	}
	return *s
}

func opCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}
