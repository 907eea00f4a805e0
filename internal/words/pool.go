package words

// DefaultPool is the built-in battle prompt list. Words are handed to both
// participants as freestyle prompts; two are drawn per session.
var DefaultPool = []string{
	// Everyday objects
	"pizza", "phone", "laptop", "sneakers", "coffee", "water", "backpack", "pencil", "paper", "clock",
	"mirror", "chair", "table", "window", "door", "car", "bike", "bus", "train", "plane",
	"boat", "skateboard", "guitar", "microphone", "camera", "tv", "radio", "book", "magazine", "newspaper",
	"wallet", "keys", "glasses", "hat", "jacket", "shirt", "pants", "shoes", "socks", "watch",
	"charger", "battery", "remote", "controller", "headphones", "speakers", "mouse", "keyboard", "screen", "monitor",

	// Animals
	"lion", "tiger", "bear", "wolf", "fox", "eagle", "hawk", "owl", "snake", "shark",
	"dolphin", "whale", "elephant", "rhino", "hippo", "giraffe", "zebra", "monkey", "gorilla", "chimpanzee",
	"rabbit", "hamster", "turtle", "lizard", "frog", "spider", "butterfly", "bee", "ant", "panda",

	// Food and drink
	"burger", "hotdog", "taco", "burrito", "nachos", "fries", "chips", "salad", "soup", "sandwich",
	"pasta", "spaghetti", "rice", "noodles", "ramen", "sushi", "curry", "steak", "shrimp", "lobster",
	"smoothie", "milkshake", "ice cream", "cake", "pie", "cookie", "brownie", "donut", "muffin", "cupcake",

	// Actions
	"run", "jump", "fly", "swim", "dance", "sing", "rap", "fight", "climb", "slide",
	"kick", "punch", "throw", "catch", "dodge", "block", "strike", "slam", "crash", "smash",
	"dominate", "crush", "roast", "burn", "flame", "heat", "freeze", "melt", "explode", "conquer",

	// Emotions
	"happy", "sad", "angry", "excited", "nervous", "scared", "brave", "proud", "confident", "shy",
	"furious", "peaceful", "anxious", "determined", "motivated", "inspired", "embarrassed", "guilty", "relieved", "joyful",

	// Places
	"city", "town", "village", "street", "bridge", "tunnel", "building", "house", "mall", "restaurant",
	"park", "beach", "mountain", "forest", "desert", "ocean", "river", "lake", "island", "valley",
	"school", "college", "office", "hospital", "library", "museum", "stadium", "arena", "gym", "court",

	// Weather and nature
	"sun", "moon", "stars", "sky", "cloud", "rain", "snow", "storm", "thunder", "lightning",
	"wind", "tornado", "hurricane", "earthquake", "volcano", "fire", "ice", "rainbow", "sunrise", "sunset",

	// Abstract
	"time", "space", "life", "death", "love", "hate", "peace", "war", "good", "evil",
	"truth", "lies", "reality", "dream", "fantasy", "magic", "power", "strength", "weakness", "courage",
	"destiny", "fate", "luck", "chance", "risk", "danger", "safety", "chaos", "order", "freedom",

	// Technology and pop culture
	"internet", "wifi", "bluetooth", "app", "software", "code", "website", "email", "stream", "meme",
	"algorithm", "robot", "drone", "satellite", "rocket", "spaceship", "laser", "hologram", "virtual", "digital",
	"viral", "trend", "challenge", "podcast", "playlist", "album", "song", "beat", "lyrics", "concert",
}
